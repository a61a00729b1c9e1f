package alphavantage

import (
	"fmt"
	"strings"

	"github.com/mitchellh/mapstructure"

	"stonkboard/internal/provider"
)

// rateLimitMarker is the text Alpha Vantage puts in the "Note" field of a
// response refused for exceeding the request quota.
const rateLimitMarker = "Thank you for using Alpha Vantage!"

// FieldMap maps the provider's raw keys onto the json field names of a
// normalized record. Raw keys not in the map are dropped.
type FieldMap map[string]string

var SearchResultMap = FieldMap{
	"1. symbol":      "symbol",
	"2. name":        "name",
	"3. type":        "type",
	"4. region":      "region",
	"5. marketOpen":  "marketOpen",
	"6. marketClose": "marketClose",
	"7. timezone":    "timezone",
	"8. currency":    "currency",
	"9. matchScore":  "matchScore",
}

var QuoteMap = FieldMap{
	"02. open":           "open",
	"03. high":           "high",
	"04. low":            "low",
	"05. price":          "price",
	"10. change percent": "changePercent",
}

var EarningsReportMap = FieldMap{
	"fiscalDateEnding": "fiscalDateEnding",
	"reportedEPS":      "reportedEPS",
}

// IsRateLimited reports whether payload is the provider's rate-limit notice.
func IsRateLimited(payload map[string]any) bool {
	note, ok := payload["Note"].(string)
	return ok && strings.Contains(note, rateLimitMarker)
}

// checkPayload runs the checks shared by every response kind. The rate-limit
// check must come first: a rate-limited body has none of the data fields.
func checkPayload(raw map[string]any) error {
	if IsRateLimited(raw) {
		note, _ := raw["Note"].(string)
		return &provider.RateLimitError{Provider: providerName, Note: note}
	}
	if msg, ok := raw["Error Message"].(string); ok {
		return &provider.MalformedResponseError{Reason: msg}
	}
	return nil
}

// ParseSearchResponse normalizes a SYMBOL_SEARCH body.
func ParseSearchResponse(raw map[string]any, fieldMap FieldMap) (provider.SearchResponse, error) {
	if err := checkPayload(raw); err != nil {
		return provider.SearchResponse{}, err
	}
	entries, err := objectList(raw, "bestMatches")
	if err != nil {
		return provider.SearchResponse{}, err
	}
	if entries == nil {
		return provider.SearchResponse{}, &provider.MalformedResponseError{Reason: "missing bestMatches"}
	}

	matches := make([]provider.SearchResult, 0, len(entries))
	for _, entry := range entries {
		result, err := project[provider.SearchResult](entry, fieldMap)
		if err != nil {
			return provider.SearchResponse{}, err
		}
		matches = append(matches, result)
	}
	return provider.SearchResponse{BestMatches: matches}, nil
}

// ParseQuoteResponse normalizes a GLOBAL_QUOTE body. Only the fields in
// fieldMap survive; volume, previous close and the like are dropped.
func ParseQuoteResponse(raw map[string]any, fieldMap FieldMap) (provider.Quote, error) {
	if err := checkPayload(raw); err != nil {
		return provider.Quote{}, err
	}
	global, ok := raw["Global Quote"].(map[string]any)
	if !ok {
		return provider.Quote{}, &provider.MalformedResponseError{Reason: "missing Global Quote"}
	}
	return project[provider.Quote](global, fieldMap)
}

// ParseEarningsResponse normalizes an EARNINGS body. A body without
// quarterlyEarnings belongs to a symbol with no earnings history and yields
// an empty report list.
func ParseEarningsResponse(raw map[string]any, fieldMap FieldMap) (provider.EarningsResponse, error) {
	if err := checkPayload(raw); err != nil {
		return provider.EarningsResponse{}, err
	}
	entries, err := objectList(raw, "quarterlyEarnings")
	if err != nil {
		return provider.EarningsResponse{}, err
	}

	reports := make([]provider.EarningsReport, 0, len(entries))
	for _, entry := range entries {
		report, err := project[provider.EarningsReport](entry, fieldMap)
		if err != nil {
			return provider.EarningsResponse{}, err
		}
		reports = append(reports, report)
	}
	return provider.EarningsResponse{Reports: reports}, nil
}

// objectList returns raw[key] as a list of objects, or nil when key is absent.
func objectList(raw map[string]any, key string) ([]map[string]any, error) {
	v, ok := raw[key]
	if !ok || v == nil {
		return nil, nil
	}
	list, ok := v.([]any)
	if !ok {
		return nil, &provider.MalformedResponseError{Reason: key + " is not a list"}
	}
	out := make([]map[string]any, 0, len(list))
	for i, item := range list {
		obj, ok := item.(map[string]any)
		if !ok {
			return nil, &provider.MalformedResponseError{Reason: key + " entry is not an object", Err: fmt.Errorf("index %d", i)}
		}
		out = append(out, obj)
	}
	return out, nil
}

// project renames the keys of raw through fieldMap and decodes the result
// into T by its json tags. Mapped keys missing from raw leave zero values.
func project[T any](raw map[string]any, fieldMap FieldMap) (T, error) {
	var out T
	named := make(map[string]any, len(fieldMap))
	for key, value := range raw {
		if name, ok := fieldMap[key]; ok {
			named[name] = value
		}
	}
	dec, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		TagName:          "json",
		WeaklyTypedInput: true,
		Result:           &out,
	})
	if err != nil {
		return out, err
	}
	if err := dec.Decode(named); err != nil {
		return out, &provider.MalformedResponseError{Reason: "unexpected field type", Err: err}
	}
	return out, nil
}
