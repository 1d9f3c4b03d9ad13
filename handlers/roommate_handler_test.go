package handlers

import (
	"encoding/json"
	"net/http"
	"net/url"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"roombuddy/domain"
)

const roommateBody = `{
	"name": "Meera",
	"age": 23,
	"gender": "female",
	"occupation": "student",
	"budget": {"min": 5000, "max": 8000},
	"location": {"type": "Point", "coordinates": [73.85, 18.52]},
	"preferredLocation": {"city": "Pune", "areas": ["Baner"]},
	"moveInDate": "2024-07-01",
	"stayDuration": "6-12 months",
	"lifestyle": {"cooking": true},
	"bio": "Final year student",
	"contactPreference": "email",
	"phone": "9876543210"
}`

func createRoommate(t *testing.T, api *testAPI) *domain.Roommate {
	t.Helper()
	w := api.do(t, http.MethodPost, "/api/roommates", roommateBody, api.member)
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	var roommate domain.Roommate
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &roommate))
	return &roommate
}

func TestRoommateHandler_CreateOncePerUser(t *testing.T) {
	api := newTestAPI(t)
	roommate := createRoommate(t, api)

	assert.True(t, roommate.IsActive)
	assert.Equal(t, time.Date(2024, 7, 1, 0, 0, 0, 0, time.UTC), roommate.MoveInDate)

	w := api.do(t, http.MethodPost, "/api/roommates", roommateBody, api.member)
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.JSONEq(t, `{"message":"You already have a roommate profile"}`, w.Body.String())
}

func TestRoommateHandler_GetRedactsByViewer(t *testing.T) {
	api := newTestAPI(t)
	roommate := createRoommate(t, api)
	path := "/api/roommates/" + roommate.ID.Hex()

	decode := func(body []byte) map[string]interface{} {
		var view map[string]interface{}
		require.NoError(t, json.Unmarshal(body, &view))
		return view
	}

	anonymous := decode(api.do(t, http.MethodGet, path, "", nil).Body.Bytes())
	assert.NotContains(t, anonymous, "phone")
	assert.NotContains(t, anonymous["user"], "email")

	// contactPreference is email: signed in viewers see email but no phone
	viewer := decode(api.do(t, http.MethodGet, path, "", api.admin).Body.Bytes())
	assert.NotContains(t, viewer, "phone")
	assert.Equal(t, "asha@example.com", viewer["user"].(map[string]interface{})["email"])

	owner := decode(api.do(t, http.MethodGet, path, "", api.member).Body.Bytes())
	assert.Equal(t, "9876543210", owner["phone"])
}

func TestRoommateHandler_GetWithBadTokenIsAnonymous(t *testing.T) {
	api := newTestAPI(t)
	roommate := createRoommate(t, api)

	r := newRequest(http.MethodGet, "/api/roommates/"+roommate.ID.Hex(), "")
	r.Header.Set("Authorization", "Bearer garbage")
	w := serveRequest(api, r)

	require.Equal(t, http.StatusOK, w.Code)
	assert.NotContains(t, w.Body.String(), "9876543210")
}

func TestRoommateHandler_SearchHidesPhone(t *testing.T) {
	api := newTestAPI(t)
	createRoommate(t, api)

	w := api.do(t, http.MethodGet, "/api/roommates", "", api.member)

	require.Equal(t, http.StatusOK, w.Code)
	var page domain.RoommatePage
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &page))
	require.Len(t, page.Roommates, 1)
	assert.Empty(t, page.Roommates[0].Phone)
	assert.Equal(t, "Asha", page.Roommates[0].User.Name)
}

func TestRoommateHandler_SearchDecodesQuery(t *testing.T) {
	api := newTestAPI(t)

	query := url.Values{}
	query.Set("minAge", "20")
	query.Set("maxBudget", "9000")
	query.Set("areas", "Baner,Aundh")
	query.Set("moveInDate", "2024-08-01")
	query.Set("smoking", "false")
	query.Set("pets", "true")
	query.Set("drinking", "yes")
	query.Set("nightOwl", "")
	query.Set("pageNumber", "0")

	w := api.do(t, http.MethodGet, "/api/roommates?"+query.Encode(), "", nil)

	require.Equal(t, http.StatusOK, w.Code)
	params := api.roommates.lastSearch
	require.NotNil(t, params)
	assert.Equal(t, 20, *params.MinAge)
	assert.Equal(t, 9000.0, *params.MaxBudget)
	assert.Equal(t, []string{"Baner", "Aundh"}, params.Areas)
	assert.Equal(t, time.Date(2024, 8, 1, 0, 0, 0, 0, time.UTC), *params.MoveInDate)
	require.NotNil(t, params.Smoking)
	assert.False(t, *params.Smoking)
	require.NotNil(t, params.Pets)
	assert.True(t, *params.Pets)
	assert.Nil(t, params.Drinking)
	assert.Nil(t, params.NightOwl)
	assert.Nil(t, params.EarlyRiser)
	assert.Equal(t, 1, params.Page)
}

func TestRoommateHandler_SearchRejectsBadDate(t *testing.T) {
	api := newTestAPI(t)

	w := api.do(t, http.MethodGet, "/api/roommates?moveInDate=someday", "", nil)

	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestRoommateHandler_UpdateAndDelete(t *testing.T) {
	api := newTestAPI(t)
	roommate := createRoommate(t, api)
	path := "/api/roommates/" + roommate.ID.Hex()

	w := api.do(t, http.MethodPut, path, `{"isActive": false}`, api.admin)
	assert.Equal(t, http.StatusForbidden, w.Code)

	w = api.do(t, http.MethodPut, path, `{"isActive": false, "budget": {"min": 6000, "max": 9000}}`, api.member)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	stored := api.roommates.items[roommate.ID]
	assert.False(t, stored.IsActive)
	assert.Equal(t, 9000.0, stored.Budget.Max)
	assert.Equal(t, "Pune", stored.PreferredLocation.City)

	w = api.do(t, http.MethodPut, path, `{"budget": {"min": 9000, "max": 100}}`, api.member)
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = api.do(t, http.MethodDelete, path, "", api.member)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"message":"Roommate profile removed"}`, w.Body.String())
}
