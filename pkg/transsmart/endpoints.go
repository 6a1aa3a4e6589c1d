package transsmart

import (
	"context"
	"net/http"
)

// ActionBook is the default booking action; ActionPrint books and returns documents.
const (
	ActionBook  = "BOOK"
	ActionPrint = "PRINT"
)

// Operations of the v2 API. endpointTable maps each to its HTTP call.
const (
	OpBookShipment            Operation = "bookShipment"
	OpRetrieveShipment        Operation = "retrieveShipment"
	OpRetrieveShipments       Operation = "retrieveShipments"
	OpDeleteShipment          Operation = "deleteShipment"
	OpGetShipmentManifestList Operation = "getShipmentManifestList"
	OpManifestShipments       Operation = "manifestShipments"
	OpCalculateRates          Operation = "calculateRates"
	OpPrintDocument           Operation = "printDocument"
	OpGetShipmentStatus       Operation = "getShipmentStatus"
	OpGetShipmentsStatuses    Operation = "getShipmentsStatuses"

	OpGetAddresses  Operation = "getAddresses"
	OpGetAddress    Operation = "getAddress"
	OpCreateAddress Operation = "createAddress"
	OpUpdateAddress Operation = "updateAddress"
	OpDeleteAddress Operation = "deleteAddress"

	OpGetCarriers           Operation = "getCarriers"
	OpGetCarrier            Operation = "getCarrier"
	OpGetCostCenters        Operation = "getCostCenters"
	OpGetCostCenter         Operation = "getCostCenter"
	OpGetIncoterms          Operation = "getIncoterms"
	OpGetIncoterm           Operation = "getIncoterm"
	OpGetMailTypes          Operation = "getMailTypes"
	OpGetMailType           Operation = "getMailType"
	OpGetPackageDefinitions Operation = "getPackageDefinitions"
	OpGetPackageDefinition  Operation = "getPackageDefinition"
	OpGetServiceLevelTimes  Operation = "getServiceLevelTimes"
	OpGetServiceLevelTime   Operation = "getServiceLevelTime"
	OpGetServiceLevelOthers Operation = "getServiceLevelOthers"
	OpGetServiceLevelOther  Operation = "getServiceLevelOther"
	OpGetBookingProfiles    Operation = "getBookingProfiles"
	OpGetBookingProfile     Operation = "getBookingProfile"

	OpGetPickupLocations Operation = "getPickupLocations"
)

var (
	argReference = Arg{Name: "reference"}
	argID        = Arg{Name: "id"}
	argNr        = Arg{Name: "nr"}
)

// endpointTable is the provider's v2 API surface.
var endpointTable = []Endpoint{
	{Operation: OpBookShipment, Method: http.MethodPost, Path: "/v2/shipments/{account}/{action}", Args: []Arg{{Name: "action", Default: ActionBook}}, Body: true, RawJob: true},
	{Operation: OpRetrieveShipment, Method: http.MethodGet, Path: "/v2/shipments/{account}/{reference}", Args: []Arg{argReference}},
	{Operation: OpRetrieveShipments, Method: http.MethodGet, Path: "/v2/shipments/{account}", Query: true},
	{Operation: OpDeleteShipment, Method: http.MethodDelete, Path: "/v2/shipments/{account}/{reference}", Args: []Arg{argReference}},
	{Operation: OpGetShipmentManifestList, Method: http.MethodGet, Path: "/v2/shipments/{account}/manifest/list", Query: true},
	{Operation: OpManifestShipments, Method: http.MethodGet, Path: "/v2/shipments/{account}/manifest", Query: true},
	{Operation: OpCalculateRates, Method: http.MethodPost, Path: "/v2/rates/{account}", Query: true, Body: true},
	{Operation: OpPrintDocument, Method: http.MethodGet, Path: "/v2/prints/{account}/{reference}", Args: []Arg{argReference}, RawJob: true},
	{Operation: OpGetShipmentStatus, Method: http.MethodGet, Path: "/v2/statuses/{account}/shipments/{reference}", Args: []Arg{argReference}},
	{Operation: OpGetShipmentsStatuses, Method: http.MethodGet, Path: "/v2/statuses/{account}/shipments", Query: true},

	{Operation: OpGetAddresses, Method: http.MethodGet, Path: "/v2/addresses/{account}"},
	{Operation: OpGetAddress, Method: http.MethodGet, Path: "/v2/addresses/{account}/{id}", Args: []Arg{argID}},
	{Operation: OpCreateAddress, Method: http.MethodPost, Path: "/v2/addresses/{account}", Body: true},
	{Operation: OpUpdateAddress, Method: http.MethodPut, Path: "/v2/addresses/{account}/{id}", Args: []Arg{argID}, Body: true},
	{Operation: OpDeleteAddress, Method: http.MethodDelete, Path: "/v2/addresses/{account}/{id}", Args: []Arg{argID}},

	referenceList(OpGetCarriers, KindCarriers),
	referenceItem(OpGetCarrier, KindCarriers),
	referenceList(OpGetCostCenters, KindCostCenters),
	referenceItem(OpGetCostCenter, KindCostCenters),
	referenceList(OpGetIncoterms, KindIncoterms),
	referenceItem(OpGetIncoterm, KindIncoterms),
	referenceList(OpGetMailTypes, KindMailTypes),
	referenceItem(OpGetMailType, KindMailTypes),
	referenceList(OpGetPackageDefinitions, KindPackages),
	referenceItem(OpGetPackageDefinition, KindPackages),
	referenceList(OpGetServiceLevelTimes, KindServiceLevelTimes),
	referenceItem(OpGetServiceLevelTime, KindServiceLevelTimes),
	referenceList(OpGetServiceLevelOthers, KindServiceLevelOthers),
	referenceItem(OpGetServiceLevelOther, KindServiceLevelOthers),
	referenceList(OpGetBookingProfiles, KindBookingProfiles),
	referenceItem(OpGetBookingProfile, KindBookingProfiles),

	{Operation: OpGetPickupLocations, Method: http.MethodGet, Path: "/v2/locations/{account}", Query: true},
}

func referenceList(op Operation, kind ReferenceKind) Endpoint {
	return Endpoint{Operation: op, Method: http.MethodGet, Path: "/v2/accounts/{account}/listsettings/" + string(kind)}
}

func referenceItem(op Operation, kind ReferenceKind) Endpoint {
	return Endpoint{Operation: op, Method: http.MethodGet, Path: "/v2/accounts/{account}/listsettings/" + string(kind) + "/{nr}", Args: []Arg{argNr}}
}

var defaultCatalog = NewCatalog(endpointTable...)

// DefaultCatalog returns the catalog of all provider operations.
func DefaultCatalog() *Catalog {
	return defaultCatalog
}

// Invoke runs op with call through the generic dispatch path.
func (c *Client) Invoke(ctx context.Context, op Operation, call Call) (interface{}, error) {
	endpoint, err := c.catalog.Get(op)
	if err != nil {
		return nil, err
	}
	path, err := endpoint.Render(c.account, call)
	if err != nil {
		return nil, err
	}
	return c.dispatch(ctx, string(op), endpoint.Method, path, call.Body)
}

func args(values ...string) Call {
	return Call{Args: values}
}

// Shipments

// BookShipment books shipments. An empty action books with ActionBook.
func (c *Client) BookShipment(ctx context.Context, data interface{}, action string) (interface{}, error) {
	return c.Invoke(ctx, OpBookShipment, Call{Args: []string{action}, Body: data})
}

// RetrieveShipment returns the shipment booked under reference.
func (c *Client) RetrieveShipment(ctx context.Context, reference string) (interface{}, error) {
	return c.Invoke(ctx, OpRetrieveShipment, args(reference))
}

// RetrieveShipments lists shipments matching query.
func (c *Client) RetrieveShipments(ctx context.Context, query Params) (interface{}, error) {
	return c.Invoke(ctx, OpRetrieveShipments, Call{Query: query})
}

// DeleteShipment deletes the shipment booked under reference.
func (c *Client) DeleteShipment(ctx context.Context, reference string) (interface{}, error) {
	return c.Invoke(ctx, OpDeleteShipment, args(reference))
}

// GetShipmentManifestList lists manifests matching query.
func (c *Client) GetShipmentManifestList(ctx context.Context, query Params) (interface{}, error) {
	return c.Invoke(ctx, OpGetShipmentManifestList, Call{Query: query})
}

// ManifestShipments manifests the shipments matching query.
func (c *Client) ManifestShipments(ctx context.Context, query Params) (interface{}, error) {
	return c.Invoke(ctx, OpManifestShipments, Call{Query: query})
}

// CalculateRates returns carrier rates for the shipments in data.
func (c *Client) CalculateRates(ctx context.Context, data interface{}, query Params) (interface{}, error) {
	return c.Invoke(ctx, OpCalculateRates, Call{Query: query, Body: data})
}

// PrintDocument returns the documents of the shipment booked under reference.
func (c *Client) PrintDocument(ctx context.Context, reference string) (interface{}, error) {
	return c.Invoke(ctx, OpPrintDocument, args(reference))
}

// GetShipmentStatus returns the status of one shipment.
func (c *Client) GetShipmentStatus(ctx context.Context, reference string) (interface{}, error) {
	return c.Invoke(ctx, OpGetShipmentStatus, args(reference))
}

// GetShipmentsStatuses returns the statuses of the shipments matching query.
func (c *Client) GetShipmentsStatuses(ctx context.Context, query Params) (interface{}, error) {
	return c.Invoke(ctx, OpGetShipmentsStatuses, Call{Query: query})
}

// Addresses

// GetAddresses lists the account addresses.
func (c *Client) GetAddresses(ctx context.Context) (interface{}, error) {
	return c.Invoke(ctx, OpGetAddresses, Call{})
}

// GetAddress returns one address.
func (c *Client) GetAddress(ctx context.Context, id string) (interface{}, error) {
	return c.Invoke(ctx, OpGetAddress, args(id))
}

// CreateAddress creates the addresses in data.
func (c *Client) CreateAddress(ctx context.Context, data interface{}) (interface{}, error) {
	return c.Invoke(ctx, OpCreateAddress, Call{Body: data})
}

// UpdateAddress replaces the address id with data.
func (c *Client) UpdateAddress(ctx context.Context, id string, data interface{}) (interface{}, error) {
	return c.Invoke(ctx, OpUpdateAddress, Call{Args: []string{id}, Body: data})
}

// DeleteAddress deletes one address.
func (c *Client) DeleteAddress(ctx context.Context, id string) (interface{}, error) {
	return c.Invoke(ctx, OpDeleteAddress, args(id))
}

// Reference data. Each list getter has an item getter taking the entry number.

// GetCarriers returns a reference data list.
func (c *Client) GetCarriers(ctx context.Context) (interface{}, error) {
	return c.Invoke(ctx, OpGetCarriers, Call{})
}

// GetCarrier returns one entry of the matching reference data list.
func (c *Client) GetCarrier(ctx context.Context, nr string) (interface{}, error) {
	return c.Invoke(ctx, OpGetCarrier, args(nr))
}

// GetCostCenters returns a reference data list.
func (c *Client) GetCostCenters(ctx context.Context) (interface{}, error) {
	return c.Invoke(ctx, OpGetCostCenters, Call{})
}

// GetCostCenter returns one entry of the matching reference data list.
func (c *Client) GetCostCenter(ctx context.Context, nr string) (interface{}, error) {
	return c.Invoke(ctx, OpGetCostCenter, args(nr))
}

// GetIncoterms returns a reference data list.
func (c *Client) GetIncoterms(ctx context.Context) (interface{}, error) {
	return c.Invoke(ctx, OpGetIncoterms, Call{})
}

// GetIncoterm returns one entry of the matching reference data list.
func (c *Client) GetIncoterm(ctx context.Context, nr string) (interface{}, error) {
	return c.Invoke(ctx, OpGetIncoterm, args(nr))
}

// GetMailTypes returns a reference data list.
func (c *Client) GetMailTypes(ctx context.Context) (interface{}, error) {
	return c.Invoke(ctx, OpGetMailTypes, Call{})
}

// GetMailType returns one entry of the matching reference data list.
func (c *Client) GetMailType(ctx context.Context, nr string) (interface{}, error) {
	return c.Invoke(ctx, OpGetMailType, args(nr))
}

// GetPackageDefinitions returns a reference data list.
func (c *Client) GetPackageDefinitions(ctx context.Context) (interface{}, error) {
	return c.Invoke(ctx, OpGetPackageDefinitions, Call{})
}

// GetPackageDefinition returns one entry of the matching reference data list.
func (c *Client) GetPackageDefinition(ctx context.Context, nr string) (interface{}, error) {
	return c.Invoke(ctx, OpGetPackageDefinition, args(nr))
}

// GetServiceLevelTimes returns a reference data list.
func (c *Client) GetServiceLevelTimes(ctx context.Context) (interface{}, error) {
	return c.Invoke(ctx, OpGetServiceLevelTimes, Call{})
}

// GetServiceLevelTime returns one entry of the matching reference data list.
func (c *Client) GetServiceLevelTime(ctx context.Context, nr string) (interface{}, error) {
	return c.Invoke(ctx, OpGetServiceLevelTime, args(nr))
}

// GetServiceLevelOthers returns a reference data list.
func (c *Client) GetServiceLevelOthers(ctx context.Context) (interface{}, error) {
	return c.Invoke(ctx, OpGetServiceLevelOthers, Call{})
}

// GetServiceLevelOther returns one entry of the matching reference data list.
func (c *Client) GetServiceLevelOther(ctx context.Context, nr string) (interface{}, error) {
	return c.Invoke(ctx, OpGetServiceLevelOther, args(nr))
}

// GetBookingProfiles returns a reference data list.
func (c *Client) GetBookingProfiles(ctx context.Context) (interface{}, error) {
	return c.Invoke(ctx, OpGetBookingProfiles, Call{})
}

// GetBookingProfile returns one entry of the matching reference data list.
func (c *Client) GetBookingProfile(ctx context.Context, nr string) (interface{}, error) {
	return c.Invoke(ctx, OpGetBookingProfile, args(nr))
}

// Locations

// GetPickupLocations lists pickup locations near the place described by query.
func (c *Client) GetPickupLocations(ctx context.Context, query Params) (interface{}, error) {
	return c.Invoke(ctx, OpGetPickupLocations, Call{Query: query})
}
