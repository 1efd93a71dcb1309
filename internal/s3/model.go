package s3

type Document struct {
	ID   string       `json:"id"`
	Data []byte       `json:"data"`
	Kind DocumentKind `json:"kind"`
	Type DocumentType `json:"type"`
}

type DocumentKind string

const (
	DocumentKindJPEG DocumentKind = "jpg"
	DocumentKindPNG  DocumentKind = "png"
	DocumentKindJSON DocumentKind = "json"
)

type DocumentType string

const (
	// DocumentTypeDeliveryNoteImage is the scanned image a delivery note was committed from
	DocumentTypeDeliveryNoteImage DocumentType = "delivery_note_image"
	// DocumentTypeRecognitionSnapshot holds the serialized recognition queue
	DocumentTypeRecognitionSnapshot DocumentType = "recognition_snapshot"
	// DocumentTypeRecognitionHistory holds the recognition attempt log
	DocumentTypeRecognitionHistory DocumentType = "recognition_history"
)

// DocumentKindFor maps an image content type to its document kind
func DocumentKindFor(contentType string) DocumentKind {
	if contentType == "image/png" {
		return DocumentKindPNG
	}
	return DocumentKindJPEG
}

func NewImageDocument(id string, data []byte, contentType string) *Document {
	return &Document{
		ID:   id,
		Data: data,
		Kind: DocumentKindFor(contentType),
		Type: DocumentTypeDeliveryNoteImage,
	}
}

func NewJSONDocument(id string, data []byte, docType DocumentType) *Document {
	return &Document{
		ID:   id,
		Data: data,
		Kind: DocumentKindJSON,
		Type: docType,
	}
}
