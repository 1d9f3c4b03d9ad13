package handlers

import (
	"github.com/mitchellh/mapstructure"
	"net/http"
	"net/url"
	"reflect"
	"roombuddy/domain"
	apperrors "roombuddy/errors"
	"time"
)

var timeType = reflect.TypeOf(time.Time{})

// decodeQuery fills a search params struct from query values using its
// "query" tags. Empty values count as absent; numbers are parsed weakly and
// a malformed one is a 400.
func decodeQuery(values url.Values, out interface{}) error {
	input := make(map[string]interface{}, len(values))
	for key, vals := range values {
		if len(vals) == 0 || vals[0] == "" {
			continue
		}
		input[key] = vals[0]
	}

	decoder, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		TagName:          "query",
		WeaklyTypedInput: true,
		Result:           out,
		DecodeHook: mapstructure.ComposeDecodeHookFunc(
			mapstructure.StringToSliceHookFunc(","),
			stringToDateHook,
		),
	})
	if err != nil {
		return apperrors.Internal(err)
	}
	if err := decoder.Decode(input); err != nil {
		return apperrors.Wrap(http.StatusBadRequest, "Invalid query parameter", err)
	}
	return nil
}

func stringToDateHook(from reflect.Type, to reflect.Type, data interface{}) (interface{}, error) {
	if from.Kind() != reflect.String || to != timeType {
		return data, nil
	}
	return domain.ParseDate(data.(string))
}

func hostelSearchParams(r *http.Request) (*domain.HostelSearchParams, error) {
	values := r.URL.Query()
	var params domain.HostelSearchParams
	if err := decodeQuery(values, &params); err != nil {
		return nil, err
	}
	params.Page = domain.PageNumber(values.Get("pageNumber"))
	return &params, nil
}

// roommateSearchParams drops lifestyle flags that are not literally "true"
// or "false" before decoding, so anything else leaves the flag unset.
func roommateSearchParams(r *http.Request) (*domain.RoommateSearchParams, error) {
	values := r.URL.Query()
	for _, key := range domain.LifestyleFlags {
		if v := values.Get(key); v != "true" && v != "false" {
			values.Del(key)
		}
	}
	var params domain.RoommateSearchParams
	if err := decodeQuery(values, &params); err != nil {
		return nil, err
	}
	params.Page = domain.PageNumber(values.Get("pageNumber"))
	return &params, nil
}
