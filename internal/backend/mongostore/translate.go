package mongostore

import (
	"fmt"
	"regexp"
	"strconv"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"automator/internal/docstore"
)

// idValue maps a string id onto the ObjectID Mongo generated for it. Anything that
// is not a valid hex ObjectID is kept as a string, so it simply matches nothing.
func idValue(id string) any {
	if oid, err := primitive.ObjectIDFromHex(id); err == nil {
		return oid
	}
	return id
}

func condValue(field string, v any) any {
	if s, ok := v.(string); ok && field == docstore.IDField {
		return idValue(s)
	}
	return v
}

// toBSON translates a docstore filter into a Mongo query document.
func toBSON(f docstore.Filter) (bson.D, error) {
	out := bson.D{}
	for _, c := range f {
		switch c.Op {
		case docstore.OpEq, docstore.OpHas:
			out = append(out, bson.E{Key: c.Field, Value: condValue(c.Field, c.Value)})
		case docstore.OpNe:
			out = append(out, bson.E{Key: c.Field, Value: bson.D{{Key: "$ne", Value: condValue(c.Field, c.Value)}}})
		case docstore.OpIn:
			values, ok := c.Value.([]string)
			if !ok {
				return nil, fmt.Errorf("in condition on %s needs []string", c.Field)
			}
			in := bson.A{}
			for _, v := range values {
				in = append(in, condValue(c.Field, v))
			}
			out = append(out, bson.E{Key: c.Field, Value: bson.D{{Key: "$in", Value: in}}})
		case docstore.OpContainsFold:
			term, _ := c.Value.(string)
			out = append(out, bson.E{Key: c.Field, Value: primitive.Regex{Pattern: regexp.QuoteMeta(term), Options: "i"}})
		case docstore.OpMinLen:
			n, _ := c.Value.(int)
			if n <= 0 {
				continue
			}
			// An array has at least n elements when index n-1 exists.
			out = append(out, bson.E{Key: c.Field + "." + strconv.Itoa(n-1), Value: bson.D{{Key: "$exists", Value: true}}})
		default:
			return nil, fmt.Errorf("unknown operator %d", c.Op)
		}
	}
	return out, nil
}

// updateToBSON translates a docstore update into Mongo update operators.
func updateToBSON(u docstore.Update) bson.D {
	out := bson.D{}
	if len(u.Set) > 0 {
		out = append(out, bson.E{Key: "$set", Value: bson.M(u.Set)})
	}
	if len(u.AddToSet) > 0 {
		out = append(out, bson.E{Key: "$addToSet", Value: bson.M(u.AddToSet)})
	}
	if len(u.Pull) > 0 {
		out = append(out, bson.E{Key: "$pull", Value: bson.M(u.Pull)})
	}
	if len(u.Unset) > 0 {
		unset := bson.M{}
		for _, f := range u.Unset {
			unset[f] = ""
		}
		out = append(out, bson.E{Key: "$unset", Value: unset})
	}
	return out
}

// toBSONDoc converts a struct or map into a mutable BSON document using its bson tags.
func toBSONDoc(doc any) (bson.M, error) {
	data, err := bson.Marshal(doc)
	if err != nil {
		return nil, fmt.Errorf("encode document: %w", err)
	}
	var m bson.M
	if err := bson.Unmarshal(data, &m); err != nil {
		return nil, fmt.Errorf("decode document: %w", err)
	}
	return m, nil
}
