package europepmc

// Section names a body section captured for every article.
type Section string

// The closed set of sections kept per article.
const (
	Introduction Section = "Introduction"
	Methods      Section = "Methods"
	Result       Section = "Result"
	Discussion   Section = "Discussion"
)

// AllSections lists the captured sections in table column order.
var AllSections = []Section{Introduction, Methods, Result, Discussion}

// Metadata holds journal-level metadata from an article's front matter.
type Metadata struct {
	// ISSNPrint is the ISSN marked pub-type="ppub"
	ISSNPrint string `json:"issn_ppub"`

	// ISSNElectronic is the ISSN marked pub-type="epub"
	ISSNElectronic string `json:"issn_epub"`

	JournalTitle  string `json:"journal_title"`
	PublisherName string `json:"publisher_name"`
}

// Record is the normalized content extracted from one full-text article.
type Record struct {
	// ID is the PMC identifier (e.g., "PMC3257301")
	ID string `json:"pmcid"`

	Introduction string `json:"introduction"`
	Methods      string `json:"methods"`
	Result       string `json:"result"`
	Discussion   string `json:"discussion"`

	// SupplementaryMarkup is the serialized first <supplementary-material> element, if any
	SupplementaryMarkup string `json:"sup_material"`

	Metadata Metadata `json:"metadata"`
}

// Article is the persisted row for a captured article.
// Column names follow the historical layout of the Main table.
type Article struct {
	PMCID         string `gorm:"primaryKey;column:pmcid;type:TEXT;not null"`
	Introduction  string `gorm:"column:Introduction;type:TEXT"`
	Methods       string `gorm:"column:Methods;type:TEXT"`
	Result        string `gorm:"column:Result;type:TEXT"`
	Discussion    string `gorm:"column:Discussion;type:TEXT"`
	SupMaterial   string `gorm:"column:SupMaterial;type:TEXT"`
	ISSNPPub      string `gorm:"column:ISSN PPUB;type:TEXT"`
	ISSNEPub      string `gorm:"column:ISSN EPUB;type:TEXT"`
	JournalTitle  string `gorm:"column:JournalTitle;type:TEXT"`
	PublisherName string `gorm:"column:PublisherName;type:TEXT"`
}

func (Article) TableName() string {
	return "Main"
}

// MethodSection pairs an article with its Methods text.
type MethodSection struct {
	PMCID   string `gorm:"column:pmcid" json:"pmcid"`
	Methods string `gorm:"column:Methods" json:"methods"`
}

func articleFromRecord(r Record) Article {
	return Article{
		PMCID:         r.ID,
		Introduction:  r.Introduction,
		Methods:       r.Methods,
		Result:        r.Result,
		Discussion:    r.Discussion,
		SupMaterial:   r.SupplementaryMarkup,
		ISSNPPub:      r.Metadata.ISSNPrint,
		ISSNEPub:      r.Metadata.ISSNElectronic,
		JournalTitle:  r.Metadata.JournalTitle,
		PublisherName: r.Metadata.PublisherName,
	}
}

func (a Article) record() Record {
	return Record{
		ID:                  a.PMCID,
		Introduction:        a.Introduction,
		Methods:             a.Methods,
		Result:              a.Result,
		Discussion:          a.Discussion,
		SupplementaryMarkup: a.SupMaterial,
		Metadata: Metadata{
			ISSNPrint:      a.ISSNPPub,
			ISSNElectronic: a.ISSNEPub,
			JournalTitle:   a.JournalTitle,
			PublisherName:  a.PublisherName,
		},
	}
}
