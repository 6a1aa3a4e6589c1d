package transsmart

import (
	"context"
	"fmt"
	"sync"

	"golang.org/x/sync/errgroup"
)

// ReferenceKind names a reference data list under /listsettings.
type ReferenceKind string

// Reference data kinds, named after their /listsettings path segment.
const (
	KindCarriers           ReferenceKind = "carriers"
	KindCostCenters        ReferenceKind = "costCenters"
	KindIncoterms          ReferenceKind = "incoterms"
	KindMailTypes          ReferenceKind = "mailTypes"
	KindPackages           ReferenceKind = "packages"
	KindServiceLevelTimes  ReferenceKind = "serviceLevelTimes"
	KindServiceLevelOthers ReferenceKind = "serviceLevelOthers"
	KindBookingProfiles    ReferenceKind = "bookingProfiles"
)

var referenceLists = map[ReferenceKind]Operation{
	KindCarriers:           OpGetCarriers,
	KindCostCenters:        OpGetCostCenters,
	KindIncoterms:          OpGetIncoterms,
	KindMailTypes:          OpGetMailTypes,
	KindPackages:           OpGetPackageDefinitions,
	KindServiceLevelTimes:  OpGetServiceLevelTimes,
	KindServiceLevelOthers: OpGetServiceLevelOthers,
	KindBookingProfiles:    OpGetBookingProfiles,
}

// ReferenceKinds returns every reference data kind.
func ReferenceKinds() []ReferenceKind {
	return []ReferenceKind{
		KindCarriers,
		KindCostCenters,
		KindIncoterms,
		KindMailTypes,
		KindPackages,
		KindServiceLevelTimes,
		KindServiceLevelOthers,
		KindBookingProfiles,
	}
}

// GetReferenceData fetches one reference data list.
func (c *Client) GetReferenceData(ctx context.Context, kind ReferenceKind) (interface{}, error) {
	op, ok := referenceLists[kind]
	if !ok {
		return nil, fmt.Errorf("%w: reference data %q", ErrUnknownOperation, kind)
	}
	return c.Invoke(ctx, op, Call{})
}

// FetchReferenceData fetches several reference data lists in parallel; no kinds means all.
// A failing kind is reported in the returned errors and does not stop the others. Errors
// follow the order of kinds.
func (c *Client) FetchReferenceData(ctx context.Context, kinds ...ReferenceKind) (map[ReferenceKind]interface{}, []error) {
	if len(kinds) == 0 {
		kinds = ReferenceKinds()
	}

	results := make(map[ReferenceKind]interface{}, len(kinds))
	failures := make(map[ReferenceKind]error)
	mu := &sync.Mutex{}

	g, ctx := errgroup.WithContext(ctx)

	for _, kind := range kinds {
		g.Go(func() error {
			data, err := c.GetReferenceData(ctx, kind)
			mu.Lock()
			defer mu.Unlock()
			if err != nil {
				failures[kind] = fmt.Errorf("%s: %w", kind, err)
				return nil
			}
			results[kind] = data
			return nil
		})
	}

	_ = g.Wait()

	errs := make([]error, 0, len(failures))
	for _, kind := range kinds {
		if err, ok := failures[kind]; ok {
			errs = append(errs, err)
			delete(failures, kind)
		}
	}
	return results, errs
}
