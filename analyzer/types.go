package analyzer

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strconv"
)

// Status is the backend's verdict for one audited element.
type Status string

const (
	StatusGood    Status = "good"
	StatusWarning Status = "warning"
	StatusError   Status = "error"
)

// AnalysisResult is the competitor overview for a domain
type AnalysisResult struct {
	OrganicKeywords       Scalar           `json:"organicKeywords"`
	OrganicKeywordsChange Scalar           `json:"organicKeywordsChange"`
	PaidKeywords          Scalar           `json:"paidKeywords"`
	PaidKeywordsChange    Scalar           `json:"paidKeywordsChange"`
	MonthlyTraffic        Scalar           `json:"monthlyTraffic"`
	MonthlyTrafficChange  Scalar           `json:"monthlyTrafficChange"`
	DomainAuthority       Scalar           `json:"domainAuthority"`
	DomainAuthorityChange Scalar           `json:"domainAuthorityChange"`
	TopOrganicKeywords    []OrganicKeyword `json:"topOrganicKeywords"`
	TopPaidKeywords       []PaidKeyword    `json:"topPaidKeywords"`
}

type OrganicKeyword struct {
	Keyword  string `json:"keyword"`
	Position int    `json:"position"`
	Volume   Scalar `json:"volume"`
}

type PaidKeyword struct {
	Keyword string  `json:"keyword"`
	CPC     float64 `json:"cpc"`
	AdSpend float64 `json:"adSpend"`
}

// KeywordRecord is one keyword-finder suggestion. Difficulty is 0-100.
type KeywordRecord struct {
	Keyword    string  `json:"keyword"`
	Volume     int64   `json:"volume"`
	CPC        float64 `json:"cpc"`
	Difficulty int     `json:"difficulty"`
}

// PageAudit represents the on-page SEO audit of a single URL
type PageAudit struct {
	URL             string       `json:"url,omitempty"`
	Title           TextCheck    `json:"title"`
	MetaDescription TextCheck    `json:"metaDescription"`
	H1              HeadingCheck `json:"h1"`
	WordCount       int          `json:"wordCount"`
	Images          []ImageCheck `json:"images"`
	Recommendations *string      `json:"recommendations"`
}

type TextCheck struct {
	Text   string `json:"text"`
	Length int    `json:"length"`
	Status Status `json:"status"`
}

type HeadingCheck struct {
	Tags   []string `json:"tags"`
	Count  int      `json:"count"`
	Status Status   `json:"status"`
}

type ImageCheck struct {
	Src    string `json:"src"`
	Alt    string `json:"alt"`
	Status Status `json:"status"`
}

// Scalar holds a JSON number or string exactly as the backend sent it. The
// backend reports some counts as numbers and others as preformatted text
// ("12,345", "+4.2%", "N/A"); both are displayed verbatim.
type Scalar struct {
	text  string
	num   float64
	isNum bool
	set   bool
}

// Number returns a numeric Scalar that prints like strconv's shortest form.
func Number(f float64) Scalar {
	return Scalar{text: strconv.FormatFloat(f, 'f', -1, 64), num: f, isNum: true, set: true}
}

func Text(s string) Scalar {
	return Scalar{text: s, set: true}
}

func (s Scalar) String() string { return s.text }

func (s Scalar) IsSet() bool { return s.set }

// Float reports the numeric value when the backend sent a number.
func (s Scalar) Float() (float64, bool) { return s.num, s.isNum }

func (s *Scalar) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if bytes.Equal(data, []byte("null")) {
		*s = Scalar{}
		return nil
	}
	if len(data) > 0 && data[0] == '"' {
		var str string
		if err := json.Unmarshal(data, &str); err != nil {
			return err
		}
		*s = Text(str)
		return nil
	}
	f, err := strconv.ParseFloat(string(data), 64)
	if err != nil {
		return fmt.Errorf("scalar must be a number or string, got %s", data)
	}
	*s = Scalar{text: string(data), num: f, isNum: true, set: true}
	return nil
}

func (s Scalar) MarshalJSON() ([]byte, error) {
	switch {
	case !s.set:
		return []byte("null"), nil
	case s.isNum:
		return []byte(s.text), nil
	default:
		return json.Marshal(s.text)
	}
}
