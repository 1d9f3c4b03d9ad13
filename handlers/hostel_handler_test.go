package handlers

import (
	"encoding/json"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"roombuddy/domain"
)

const hostelBody = `{
	"name": "Sunrise PG",
	"description": "Close to campus",
	"address": {"street": "12 MG Road", "city": "Bengaluru", "state": "KA", "zipCode": "560001", "country": "India"},
	"location": {"coordinates": [77.59, 12.97]},
	"price": 7500,
	"type": "pg",
	"gender": "coed",
	"amenities": ["WiFi", "Laundry"],
	"vacancies": 2,
	"contactPhone": "9999999999",
	"contactEmail": "owner@example.com"
}`

func createHostel(t *testing.T, api *testAPI, owner *domain.User) *domain.Hostel {
	t.Helper()
	w := api.do(t, http.MethodPost, "/api/hostels", hostelBody, owner)
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	var hostel domain.Hostel
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &hostel))
	return &hostel
}

func TestHostelHandler_CreateRequiresToken(t *testing.T) {
	api := newTestAPI(t)

	w := api.do(t, http.MethodPost, "/api/hostels", hostelBody, nil)

	assert.Equal(t, http.StatusUnauthorized, w.Code)
	assert.Empty(t, api.hostels.items)
}

func TestHostelHandler_CreateAndGet(t *testing.T) {
	api := newTestAPI(t)
	hostel := createHostel(t, api, api.member)

	assert.Equal(t, api.member.ID, hostel.Owner)
	assert.Equal(t, domain.PointType, hostel.Location.Type)
	assert.Equal(t, 0, hostel.NumReviews)

	w := api.do(t, http.MethodGet, "/api/hostels/"+hostel.ID.Hex(), "", nil)
	require.Equal(t, http.StatusOK, w.Code)
	var body map[string]interface{}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	owner := body["owner"].(map[string]interface{})
	assert.Equal(t, "Asha", owner["name"])
	assert.Equal(t, "asha@example.com", owner["email"])
}

func TestHostelHandler_GetUnknown(t *testing.T) {
	api := newTestAPI(t)

	for _, id := range []string{primitive.NewObjectID().Hex(), "not-an-id"} {
		w := api.do(t, http.MethodGet, "/api/hostels/"+id, "", nil)
		assert.Equal(t, http.StatusNotFound, w.Code, id)
		assert.JSONEq(t, `{"message":"Hostel not found"}`, w.Body.String())
	}
}

func TestHostelHandler_CreateValidation(t *testing.T) {
	api := newTestAPI(t)

	w := api.do(t, http.MethodPost, "/api/hostels", `{"name":"Only a name"}`, api.member)

	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Contains(t, w.Body.String(), "is required")
}

func TestHostelHandler_UpdateAndDeleteOwnership(t *testing.T) {
	api := newTestAPI(t)
	hostel := createHostel(t, api, api.member)
	path := "/api/hostels/" + hostel.ID.Hex()

	w := api.do(t, http.MethodPut, path, `{"price": 9000}`, api.admin)
	assert.Equal(t, http.StatusForbidden, w.Code)
	assert.JSONEq(t, `{"message":"You are not authorized to update this hostel"}`, w.Body.String())

	w = api.do(t, http.MethodPut, path, `{"price": 9000, "vacancies": 0}`, api.member)
	require.Equal(t, http.StatusOK, w.Code)
	stored := api.hostels.items[hostel.ID]
	assert.Equal(t, 9000.0, stored.Price)
	assert.Equal(t, 0, stored.Vacancies)
	assert.Equal(t, "Sunrise PG", stored.Name)

	w = api.do(t, http.MethodDelete, path, "", api.admin)
	assert.Equal(t, http.StatusForbidden, w.Code)

	w = api.do(t, http.MethodDelete, path, "", api.member)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"message":"Hostel removed"}`, w.Body.String())
	assert.Empty(t, api.hostels.items)
}

func TestHostelHandler_Reviews(t *testing.T) {
	api := newTestAPI(t)
	hostel := createHostel(t, api, api.member)
	path := "/api/hostels/" + hostel.ID.Hex() + "/reviews"

	w := api.do(t, http.MethodPost, path, `{"rating": 4, "comment": "Clean rooms"}`, api.admin)
	require.Equal(t, http.StatusCreated, w.Code)
	assert.JSONEq(t, `{"message":"Review added"}`, w.Body.String())

	w = api.do(t, http.MethodPost, path, `{"rating": 5, "comment": "Again"}`, api.admin)
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.JSONEq(t, `{"message":"Hostel already reviewed"}`, w.Body.String())

	stored := api.hostels.items[hostel.ID]
	assert.Equal(t, 1, stored.NumReviews)
	assert.Equal(t, 4.0, stored.Rating)
	assert.Equal(t, "Root", stored.Reviews[0].Name)
}

func TestHostelHandler_SearchDecodesQuery(t *testing.T) {
	api := newTestAPI(t)
	createHostel(t, api, api.member)

	w := api.do(t, http.MethodGet, "/api/hostels?minPrice=5000&type=pg&amenities=WiFi,Laundry&lat=12.9&lng=77.5&maxDistance=5&pageNumber=2", "", nil)

	require.Equal(t, http.StatusOK, w.Code)
	params := api.hostels.lastSearch
	require.NotNil(t, params)
	assert.Equal(t, 5000.0, *params.MinPrice)
	assert.Nil(t, params.MaxPrice)
	assert.Equal(t, "pg", params.Type)
	assert.Equal(t, []string{"WiFi", "Laundry"}, params.Amenities)
	assert.True(t, params.Near.IsSet())
	assert.Equal(t, 2, params.Page)

	var page domain.HostelPage
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &page))
	assert.Equal(t, int64(1), page.TotalCount)
	assert.Equal(t, 1, page.Pages)
}

func TestHostelHandler_SearchRejectsBadNumber(t *testing.T) {
	api := newTestAPI(t)

	w := api.do(t, http.MethodGet, "/api/hostels?minPrice=cheap", "", nil)

	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.JSONEq(t, `{"message":"Invalid query parameter"}`, w.Body.String())
}
