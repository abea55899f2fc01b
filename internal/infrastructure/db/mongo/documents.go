package mongo

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/vikram-software/portal/internal/core/domain"
)

// objectID parses a hex id. Malformed ids cannot exist in the store, so callers
// report them as the entity's not-found error.
func objectID(hex string, notFound error) (primitive.ObjectID, error) {
	oid, err := primitive.ObjectIDFromHex(hex)
	if err != nil {
		return primitive.NilObjectID, notFound
	}
	return oid, nil
}

// objectIDs parses every well-formed id and drops the rest.
func objectIDs(hexes []string) []primitive.ObjectID {
	out := make([]primitive.ObjectID, 0, len(hexes))
	for _, h := range hexes {
		if oid, err := primitive.ObjectIDFromHex(h); err == nil {
			out = append(out, oid)
		}
	}
	return out
}

func hexIDs(oids []primitive.ObjectID) []string {
	out := make([]string, len(oids))
	for i, oid := range oids {
		out[i] = oid.Hex()
	}
	return out
}

func optionalHex(oid *primitive.ObjectID) string {
	if oid == nil {
		return ""
	}
	return oid.Hex()
}

type attachmentDoc struct {
	Filename   string     `bson:"filename"`
	FileURL    string     `bson:"file_url"`
	FileType   string     `bson:"file_type,omitempty"`
	FileSize   int64      `bson:"file_size,omitempty"`
	UploadedAt *time.Time `bson:"uploaded_at,omitempty"`
	UploadedBy string     `bson:"uploaded_by,omitempty"`
}

func toAttachmentDocs(in []domain.Attachment) []attachmentDoc {
	if len(in) == 0 {
		return nil
	}
	out := make([]attachmentDoc, len(in))
	for i, a := range in {
		out[i] = attachmentDoc(a)
	}
	return out
}

func toAttachments(in []attachmentDoc) []domain.Attachment {
	if len(in) == 0 {
		return nil
	}
	out := make([]domain.Attachment, len(in))
	for i, d := range in {
		out[i] = domain.Attachment(d)
	}
	return out
}
