package content

// Metadata is the typed payload attached to a Content. The set of variants
// is closed: every implementation lives in this file.
type Metadata interface {
	isMetadata()
}

// EmptyMetadata is used when the stored blob is absent, malformed, or the
// type carries no metadata.
type EmptyMetadata struct{}

// URLMetadata describes a detected URL.
type URLMetadata struct {
	URL      string
	Domain   string
	Protocol string
}

// EmailMetadata describes a detected email address.
type EmailMetadata struct {
	Email  string
	Domain string
}

// ColorMetadata describes a detected color literal.
type ColorMetadata struct {
	Hex    string
	Value  string
	Format string
}

// CodeMetadata describes a detected code snippet.
type CodeMetadata struct {
	Language  string
	Score     float64
	LineCount int
}

// CSVMetadata describes delimited tabular text.
type CSVMetadata struct {
	Delimiter string
}

// DateMetadata describes a date or a numeric timestamp. Unit is the unit of
// Value for timestamps (s, ms, us, ns) and empty for calendar dates.
type DateMetadata struct {
	ISO   string
	Unit  string
	Value float64
}

// FileEntry is one file of a files clip.
type FileEntry struct {
	Path     string
	Name     string
	Size     int64
	Created  float64
	Modified float64
}

// FilesMetadata describes a list of copied files.
type FilesMetadata struct {
	Count int
	Files []FileEntry
}

// OfficeMetadata describes an office document payload. The paths and the
// source application come from dedicated clip columns.
type OfficeMetadata struct {
	SourceApp  string
	OfficePath string
	PDFPath    string
	ImagePath  string
}

// PhoneMetadata describes a detected phone number.
type PhoneMetadata struct {
	Number  string
	Country string
}

// MathMetadata describes an arithmetic expression and, when it evaluated,
// its result.
type MathMetadata struct {
	Expression string
	Result     float64
	HasResult  bool
}

// SecretMetadata describes text that looks like a credential.
type SecretMetadata struct {
	Kind string
}

func (EmptyMetadata) isMetadata()  {}
func (URLMetadata) isMetadata()    {}
func (EmailMetadata) isMetadata()  {}
func (ColorMetadata) isMetadata()  {}
func (CodeMetadata) isMetadata()   {}
func (CSVMetadata) isMetadata()    {}
func (DateMetadata) isMetadata()   {}
func (FilesMetadata) isMetadata()  {}
func (OfficeMetadata) isMetadata() {}
func (PhoneMetadata) isMetadata()  {}
func (MathMetadata) isMetadata()   {}
func (SecretMetadata) isMetadata() {}
