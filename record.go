package europepmc

import "strings"

// Section returns the text captured for the named section.
func (r *Record) Section(s Section) string {
	switch s {
	case Introduction:
		return r.Introduction
	case Methods:
		return r.Methods
	case Result:
		return r.Result
	case Discussion:
		return r.Discussion
	}
	return ""
}

// Sections returns all four sections keyed by name. Missing sections map to "".
func (r *Record) Sections() map[Section]string {
	m := make(map[Section]string, len(AllSections))
	for _, s := range AllSections {
		m[s] = r.Section(s)
	}
	return m
}

func (r *Record) setSection(s Section, text string) {
	switch s {
	case Introduction:
		r.Introduction = text
	case Methods:
		r.Methods = text
	case Result:
		r.Result = text
	case Discussion:
		r.Discussion = text
	}
}

// HasSupplementary reports whether supplementary material markup was captured.
func (r *Record) HasSupplementary() bool {
	return r.SupplementaryMarkup != ""
}

// FullTextURL returns the Europe PMC full-text XML URL for id under the REST root.
func FullTextURL(root, id string) string {
	if !strings.HasSuffix(root, "/") {
		root += "/"
	}
	return root + id + "/fullTextXML"
}

// ArticleURL returns the Europe PMC landing page for a PMC identifier.
func ArticleURL(id string) string {
	return "https://europepmc.org/article/PMC/" + strings.TrimPrefix(id, "PMC")
}
