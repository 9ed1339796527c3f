package mirror

import "github.com/smartshop/smartshop/internal/product"

// Document field names shared by both sync directions.
//
// local_id and remote_id are informational for the remote side; inbound
// decoding never trusts local_id because it comes from another device's
// store.
const (
	FieldName     = "name"
	FieldQuantity = "quantity"
	FieldPrice    = "price"
	FieldLocalID  = "local_id"
	FieldRemoteID = "remote_id"
)

// ProductFields builds the document representation of a product.
func ProductFields(p product.Product) map[string]any {
	return map[string]any{
		FieldName:     p.Name,
		FieldQuantity: p.Quantity,
		FieldPrice:    p.Price,
		FieldLocalID:  p.LocalID,
		FieldRemoteID: p.RemoteID,
	}
}

// DecodeProduct extracts product fields from a document, defaulting
// malformed or missing values to safe zeros. Inbound data is never allowed
// to fail decoding: a bad document yields an empty name and zero
// quantity/price rather than an error.
func DecodeProduct(docID string, fields map[string]any) product.Product {
	return product.Product{
		RemoteID: docID,
		Name:     stringField(fields, FieldName),
		Quantity: intField(fields, FieldQuantity),
		Price:    floatField(fields, FieldPrice),
	}
}

func stringField(fields map[string]any, key string) string {
	if v, ok := fields[key].(string); ok {
		return v
	}
	return ""
}

// intField accepts the integer encodings a document store round-trip can
// produce: Go ints from in-process writes, int64/float64 from JSON-ish
// transports.
func intField(fields map[string]any, key string) int {
	switch v := fields[key].(type) {
	case int:
		return v
	case int64:
		return int(v)
	case float64:
		return int(v)
	default:
		return 0
	}
}

func floatField(fields map[string]any, key string) float64 {
	switch v := fields[key].(type) {
	case float64:
		return v
	case int:
		return float64(v)
	case int64:
		return float64(v)
	default:
		return 0
	}
}
