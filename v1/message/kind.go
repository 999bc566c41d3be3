package message

// Kind is the closed set of message types the recorder acts on.
type Kind int

const (
	// KindUnknown covers every type string the recorder does not handle.
	KindUnknown Kind = iota
	// KindFile announces a single new file.
	KindFile
	// KindDataset announces a group of files sharing acquisition metadata.
	KindDataset
	// KindDelete retracts a file or a dataset member by uri.
	KindDelete
)

// Type strings as they appear on the bus.
const (
	TypeFile    = "file"
	TypeDataset = "dataset"
	TypeDelete  = "del"
)

// ParseKind maps a bus type string to its Kind. Matching is exact.
func ParseKind(t string) Kind {
	switch t {
	case TypeFile:
		return KindFile
	case TypeDataset:
		return KindDataset
	case TypeDelete:
		return KindDelete
	default:
		return KindUnknown
	}
}

func (k Kind) String() string {
	switch k {
	case KindFile:
		return TypeFile
	case KindDataset:
		return TypeDataset
	case KindDelete:
		return TypeDelete
	default:
		return "unknown"
	}
}
