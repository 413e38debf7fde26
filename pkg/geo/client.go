package geo

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/cybernilsen/cyberwatch/pkg/data"
	jsoniter "github.com/json-iterator/go"
)

var json = jsoniter.ConfigCompatibleWithStandardLibrary

//LookupFunc performs one external geolocation lookup for an address
type LookupFunc func(ctx context.Context, address string) (data.GeoInfo, error)

//Client queries an ipapi.co style HTTP endpoint for address metadata
type Client struct {
	formatString string
	httpClient   *http.Client
}

//NewClient builds a geolocation API client. The format string must
//contain a %s placeholder for the address.
func NewClient(formatString string, timeout time.Duration) *Client {
	return &Client{
		formatString: formatString,
		httpClient:   &http.Client{Timeout: timeout},
	}
}

type apiResponse struct {
	Error       bool   `json:"error"`
	Reason      string `json:"reason"`
	CountryCode string `json:"country_code"`
	CountryName string `json:"country_name"`
	City        string `json:"city"`
	Org         string `json:"org"`
}

//Lookup implements LookupFunc against the configured endpoint
func (c *Client) Lookup(ctx context.Context, address string) (data.GeoInfo, error) {
	url := fmt.Sprintf(c.formatString, address)

	req, err := http.NewRequest(http.MethodGet, url, nil)
	if err != nil {
		return data.GeoInfo{}, err
	}
	req = req.WithContext(ctx)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return data.GeoInfo{}, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return data.GeoInfo{}, fmt.Errorf("geolocation lookup for %s returned status %d", address, resp.StatusCode)
	}

	var body apiResponse
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		return data.GeoInfo{}, err
	}

	// ipapi.co reports lookup problems in the payload with a 200 status
	if body.Error {
		return data.GeoInfo{}, fmt.Errorf("geolocation lookup for %s failed: %s", address, body.Reason)
	}

	return data.GeoInfo{
		CountryCode: body.CountryCode,
		CountryName: body.CountryName,
		City:        body.City,
		ISP:         body.Org,
	}, nil
}
