package transsmart_test

import (
	"context"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tournevent/transsmart/pkg/transsmart"
	"github.com/tournevent/transsmart/pkg/transsmart/transsmarttest"
)

func TestClient_Endpoints(t *testing.T) {
	body := map[string]interface{}{"reference": "REF-1"}

	tests := []struct {
		name   string
		call   func(ctx context.Context, c *transsmart.Client) (interface{}, error)
		method string
		path   string
		query  string
	}{
		{
			name:   "book shipment",
			call:   func(ctx context.Context, c *transsmart.Client) (interface{}, error) { return c.BookShipment(ctx, body, "") },
			method: http.MethodPost,
			path:   "/v2/shipments/acme/BOOK",
			query:  "rawJob=true",
		},
		{
			name:   "book and print shipment",
			call:   func(ctx context.Context, c *transsmart.Client) (interface{}, error) { return c.BookShipment(ctx, body, transsmart.ActionPrint) },
			method: http.MethodPost,
			path:   "/v2/shipments/acme/PRINT",
			query:  "rawJob=true",
		},
		{
			name:   "retrieve shipment",
			call:   func(ctx context.Context, c *transsmart.Client) (interface{}, error) { return c.RetrieveShipment(ctx, "REF-1") },
			method: http.MethodGet,
			path:   "/v2/shipments/acme/REF-1",
		},
		{
			name:   "retrieve shipments without filters",
			call:   func(ctx context.Context, c *transsmart.Client) (interface{}, error) { return c.RetrieveShipments(ctx, nil) },
			method: http.MethodGet,
			path:   "/v2/shipments/acme",
		},
		{
			name: "retrieve shipments with filters",
			call: func(ctx context.Context, c *transsmart.Client) (interface{}, error) {
				return c.RetrieveShipments(ctx, transsmart.Params{"carrier": "DPD"})
			},
			method: http.MethodGet,
			path:   "/v2/shipments/acme",
			query:  "carrier=DPD",
		},
		{
			name:   "delete shipment",
			call:   func(ctx context.Context, c *transsmart.Client) (interface{}, error) { return c.DeleteShipment(ctx, "REF-1") },
			method: http.MethodDelete,
			path:   "/v2/shipments/acme/REF-1",
		},
		{
			name: "manifest list",
			call: func(ctx context.Context, c *transsmart.Client) (interface{}, error) {
				return c.GetShipmentManifestList(ctx, transsmart.Params{"carrier": "DHL"})
			},
			method: http.MethodGet,
			path:   "/v2/shipments/acme/manifest/list",
			query:  "carrier=DHL",
		},
		{
			name:   "manifest shipments",
			call:   func(ctx context.Context, c *transsmart.Client) (interface{}, error) { return c.ManifestShipments(ctx, nil) },
			method: http.MethodGet,
			path:   "/v2/shipments/acme/manifest",
		},
		{
			name: "calculate rates",
			call: func(ctx context.Context, c *transsmart.Client) (interface{}, error) {
				return c.CalculateRates(ctx, body, transsmart.Params{"type": "ALL"})
			},
			method: http.MethodPost,
			path:   "/v2/rates/acme",
			query:  "type=ALL",
		},
		{
			name:   "print document",
			call:   func(ctx context.Context, c *transsmart.Client) (interface{}, error) { return c.PrintDocument(ctx, "REF-1") },
			method: http.MethodGet,
			path:   "/v2/prints/acme/REF-1",
			query:  "rawJob=true",
		},
		{
			name:   "shipment status",
			call:   func(ctx context.Context, c *transsmart.Client) (interface{}, error) { return c.GetShipmentStatus(ctx, "REF-1") },
			method: http.MethodGet,
			path:   "/v2/statuses/acme/shipments/REF-1",
		},
		{
			name: "shipments statuses",
			call: func(ctx context.Context, c *transsmart.Client) (interface{}, error) {
				return c.GetShipmentsStatuses(ctx, transsmart.Params{"reference": "REF-1"})
			},
			method: http.MethodGet,
			path:   "/v2/statuses/acme/shipments",
			query:  "reference=REF-1",
		},
		{
			name:   "addresses",
			call:   func(ctx context.Context, c *transsmart.Client) (interface{}, error) { return c.GetAddresses(ctx) },
			method: http.MethodGet,
			path:   "/v2/addresses/acme",
		},
		{
			name:   "address",
			call:   func(ctx context.Context, c *transsmart.Client) (interface{}, error) { return c.GetAddress(ctx, "7") },
			method: http.MethodGet,
			path:   "/v2/addresses/acme/7",
		},
		{
			name:   "create address",
			call:   func(ctx context.Context, c *transsmart.Client) (interface{}, error) { return c.CreateAddress(ctx, body) },
			method: http.MethodPost,
			path:   "/v2/addresses/acme",
		},
		{
			name:   "update address",
			call:   func(ctx context.Context, c *transsmart.Client) (interface{}, error) { return c.UpdateAddress(ctx, "7", body) },
			method: http.MethodPut,
			path:   "/v2/addresses/acme/7",
		},
		{
			name:   "delete address",
			call:   func(ctx context.Context, c *transsmart.Client) (interface{}, error) { return c.DeleteAddress(ctx, "7") },
			method: http.MethodDelete,
			path:   "/v2/addresses/acme/7",
		},
		{
			name:   "carriers",
			call:   func(ctx context.Context, c *transsmart.Client) (interface{}, error) { return c.GetCarriers(ctx) },
			method: http.MethodGet,
			path:   "/v2/accounts/acme/listsettings/carriers",
		},
		{
			name:   "carrier",
			call:   func(ctx context.Context, c *transsmart.Client) (interface{}, error) { return c.GetCarrier(ctx, "DPD") },
			method: http.MethodGet,
			path:   "/v2/accounts/acme/listsettings/carriers/DPD",
		},
		{
			name:   "cost centers",
			call:   func(ctx context.Context, c *transsmart.Client) (interface{}, error) { return c.GetCostCenters(ctx) },
			method: http.MethodGet,
			path:   "/v2/accounts/acme/listsettings/costCenters",
		},
		{
			name:   "cost center",
			call:   func(ctx context.Context, c *transsmart.Client) (interface{}, error) { return c.GetCostCenter(ctx, "CC1") },
			method: http.MethodGet,
			path:   "/v2/accounts/acme/listsettings/costCenters/CC1",
		},
		{
			name:   "incoterms",
			call:   func(ctx context.Context, c *transsmart.Client) (interface{}, error) { return c.GetIncoterms(ctx) },
			method: http.MethodGet,
			path:   "/v2/accounts/acme/listsettings/incoterms",
		},
		{
			name:   "incoterm",
			call:   func(ctx context.Context, c *transsmart.Client) (interface{}, error) { return c.GetIncoterm(ctx, "DAP") },
			method: http.MethodGet,
			path:   "/v2/accounts/acme/listsettings/incoterms/DAP",
		},
		{
			name:   "mail types",
			call:   func(ctx context.Context, c *transsmart.Client) (interface{}, error) { return c.GetMailTypes(ctx) },
			method: http.MethodGet,
			path:   "/v2/accounts/acme/listsettings/mailTypes",
		},
		{
			name:   "mail type",
			call:   func(ctx context.Context, c *transsmart.Client) (interface{}, error) { return c.GetMailType(ctx, "2") },
			method: http.MethodGet,
			path:   "/v2/accounts/acme/listsettings/mailTypes/2",
		},
		{
			name:   "package definitions",
			call:   func(ctx context.Context, c *transsmart.Client) (interface{}, error) { return c.GetPackageDefinitions(ctx) },
			method: http.MethodGet,
			path:   "/v2/accounts/acme/listsettings/packages",
		},
		{
			name:   "package definition",
			call:   func(ctx context.Context, c *transsmart.Client) (interface{}, error) { return c.GetPackageDefinition(ctx, "BOX") },
			method: http.MethodGet,
			path:   "/v2/accounts/acme/listsettings/packages/BOX",
		},
		{
			name:   "service level times",
			call:   func(ctx context.Context, c *transsmart.Client) (interface{}, error) { return c.GetServiceLevelTimes(ctx) },
			method: http.MethodGet,
			path:   "/v2/accounts/acme/listsettings/serviceLevelTimes",
		},
		{
			name:   "service level time",
			call:   func(ctx context.Context, c *transsmart.Client) (interface{}, error) { return c.GetServiceLevelTime(ctx, "24H") },
			method: http.MethodGet,
			path:   "/v2/accounts/acme/listsettings/serviceLevelTimes/24H",
		},
		{
			name:   "service level others",
			call:   func(ctx context.Context, c *transsmart.Client) (interface{}, error) { return c.GetServiceLevelOthers(ctx) },
			method: http.MethodGet,
			path:   "/v2/accounts/acme/listsettings/serviceLevelOthers",
		},
		{
			name:   "service level other",
			call:   func(ctx context.Context, c *transsmart.Client) (interface{}, error) { return c.GetServiceLevelOther(ctx, "EXPRESS") },
			method: http.MethodGet,
			path:   "/v2/accounts/acme/listsettings/serviceLevelOthers/EXPRESS",
		},
		{
			name:   "booking profiles",
			call:   func(ctx context.Context, c *transsmart.Client) (interface{}, error) { return c.GetBookingProfiles(ctx) },
			method: http.MethodGet,
			path:   "/v2/accounts/acme/listsettings/bookingProfiles",
		},
		{
			name:   "booking profile",
			call:   func(ctx context.Context, c *transsmart.Client) (interface{}, error) { return c.GetBookingProfile(ctx, "DEFAULT") },
			method: http.MethodGet,
			path:   "/v2/accounts/acme/listsettings/bookingProfiles/DEFAULT",
		},
		{
			name: "pickup locations",
			call: func(ctx context.Context, c *transsmart.Client) (interface{}, error) {
				return c.GetPickupLocations(ctx, transsmart.Params{"zipCode": "8263AX"})
			},
			method: http.MethodGet,
			path:   "/v2/locations/acme",
			query:  "zipCode=8263AX",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			srv := transsmarttest.NewServer()
			defer srv.Close()

			client := newTestClient(testConfig(srv))

			_, err := tt.call(context.Background(), client)
			require.NoError(t, err)

			req, ok := srv.LastRequest()
			require.True(t, ok)
			assert.Equal(t, tt.method, req.Method)
			assert.Equal(t, tt.path, req.Path)
			assert.Equal(t, tt.query, req.RawQuery)
		})
	}
}

func TestClient_BookShipment_SendsBody(t *testing.T) {
	srv := transsmarttest.NewServer()
	defer srv.Close()

	client := newTestClient(testConfig(srv))
	shipments := []map[string]interface{}{{"reference": "REF-1", "carrier": "DPD"}}

	_, err := client.BookShipment(context.Background(), shipments, transsmart.ActionBook)
	require.NoError(t, err)

	req, _ := srv.LastRequest()
	assert.JSONEq(t, `[{"reference":"REF-1","carrier":"DPD"}]`, string(req.Body))
}

func TestClient_Endpoints_EscapePathArguments(t *testing.T) {
	srv := transsmarttest.NewServer()
	defer srv.Close()

	client := newTestClient(testConfig(srv))

	_, err := client.RetrieveShipment(context.Background(), "ORDER 12/3")
	require.NoError(t, err)

	req, _ := srv.LastRequest()
	assert.Equal(t, "/v2/shipments/acme/ORDER%2012%2F3", req.EscapedPath)
}

func TestClient_Endpoints_MissingArgument(t *testing.T) {
	srv := transsmarttest.NewServer()
	defer srv.Close()

	client := newTestClient(testConfig(srv))

	_, err := client.RetrieveShipment(context.Background(), "")
	assert.ErrorIs(t, err, transsmart.ErrInvalidCall)
	assert.Equal(t, 0, srv.Logins())
}
