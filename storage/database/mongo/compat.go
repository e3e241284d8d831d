package mongorepos

import (
	"strconv"
	"strings"
	"time"

	"github.com/pkg/errors"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/bsontype"
)

// The dashboard stored references and fee months loosely: attendance studentId as the hex
// string of the student _id, payments studentId as an ObjectID, fee months by name ("May")
// and salary months as numbers. The types below decode every variant.

// decodeRef reads an ObjectID or a string as a hex id.
func decodeRef(t bsontype.Type, data []byte) (string, error) {
	rv := bson.RawValue{Type: t, Value: data}
	switch t {
	case bsontype.ObjectID:
		return rv.ObjectID().Hex(), nil
	case bsontype.String:
		return rv.StringValue(), nil
	case bsontype.Null, bsontype.Undefined:
		return "", nil
	}
	return "", errors.Errorf("cannot decode %s into a document reference", t)
}

// hexRef is a reference stored as a hex string.
type hexRef string

func (r *hexRef) UnmarshalBSONValue(t bsontype.Type, data []byte) error {
	s, err := decodeRef(t, data)
	*r = hexRef(s)
	return err
}

// oidRef is a reference stored as an ObjectID (a string when it is not a valid hex id).
type oidRef string

func (r oidRef) MarshalBSONValue() (bsontype.Type, []byte, error) {
	if oid, ok := objectID(string(r)); ok {
		return bson.MarshalValue(oid)
	}
	return bson.MarshalValue(string(r))
}

func (r *oidRef) UnmarshalBSONValue(t bsontype.Type, data []byte) error {
	s, err := decodeRef(t, data)
	*r = oidRef(s)
	return err
}

// refMatch matches a reference field holding id as an ObjectID or as its hex string.
func refMatch(id string) interface{} {
	if oid, ok := objectID(id); ok {
		return bson.M{"$in": bson.A{oid, id}}
	}
	return id
}

// ledgerMonth is a period month, stored by name when named is set.
// Unknown names decode to 0, which matches no period.
type ledgerMonth struct {
	n     int
	named bool
}

func (m ledgerMonth) MarshalBSONValue() (bsontype.Type, []byte, error) {
	if m.named && m.n >= 1 && m.n <= 12 {
		return bson.MarshalValue(time.Month(m.n).String())
	}
	return bson.MarshalValue(int32(m.n))
}

func (m *ledgerMonth) UnmarshalBSONValue(t bsontype.Type, data []byte) error {
	rv := bson.RawValue{Type: t, Value: data}
	*m = ledgerMonth{}
	switch t {
	case bsontype.Int32:
		m.n = int(rv.Int32())
	case bsontype.Int64:
		m.n = int(rv.Int64())
	case bsontype.Double:
		m.n = int(rv.Double())
	case bsontype.String:
		m.n, m.named = parseMonthName(rv.StringValue()), true
	case bsontype.Null, bsontype.Undefined:
	default:
		return errors.Errorf("cannot decode %s into a month", t)
	}
	return nil
}

// parseMonthName accepts "5", "May" or "may"; 0 when s is neither.
func parseMonthName(s string) int {
	s = strings.TrimSpace(s)
	if n, err := strconv.Atoi(s); err == nil {
		if n < 1 || n > 12 {
			return 0
		}
		return n
	}
	for m := time.January; m <= time.December; m++ {
		if strings.EqualFold(s, m.String()) {
			return int(m)
		}
	}
	return 0
}

// monthMatch matches a month field holding month as a number, a name or a numeric string.
func monthMatch(month int) bson.M {
	return bson.M{"$in": bson.A{month, time.Month(month).String(), strconv.Itoa(month)}}
}
