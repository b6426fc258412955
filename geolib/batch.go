package geolib

import "context"

// BatchResult is a result of LookupBatch. Items keep an input order of
// successful hostnames, Errors keep an input order of failed ones.
type BatchResult struct {
	Items  []GeoLocationRecord
	Errors []*LookupError
}

func (b BatchResult) ItemCount() int {
	return len(b.Items)
}

// LookupBatch does flat lookups one by one. A failure of some hostname
// never stops processing of the rest. Hostnames are processed
// sequentially so a single batch cannot burst a rate-limited provider.
func (g *Geolocator) LookupBatch(ctx context.Context, hostnames []string) BatchResult {
	rv := BatchResult{
		Items:  make([]GeoLocationRecord, 0, len(hostnames)),
		Errors: []*LookupError{},
	}

	for _, hostname := range hostnames {
		record, err := g.Lookup(ctx, hostname)
		if err != nil {
			rv.Errors = append(rv.Errors, AsLookupError(err, hostname))

			continue
		}

		rv.Items = append(rv.Items, record)
	}

	return rv
}
