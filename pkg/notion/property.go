package notion

import (
	"time"

	"github.com/jomei/notionapi"
)

// FieldKind names the Notion property wrapper a logical field is stored
// in. Manually maintained databases drift between wrapper kinds over
// time, so the kind is declared per database, not assumed.
type FieldKind string

const (
	KindTitle    FieldKind = "title"
	KindRichText FieldKind = "rich_text"
	KindNumber   FieldKind = "number"
	KindSelect   FieldKind = "select"
	KindDate     FieldKind = "date"
	KindFormula  FieldKind = "formula"
)

// StringValue extracts a text-kind property value from a page's
// properties. A missing property, a wrapper of a different concrete
// type, or an unset value all yield "". Rows are hand-entered and
// routinely incomplete; absence is never an error.
func StringValue(props notionapi.Properties, name string, kind FieldKind) string {
	prop, ok := props[name]
	if !ok {
		return ""
	}

	switch kind {
	case KindTitle:
		if tp, ok := prop.(*notionapi.TitleProperty); ok {
			return plainText(tp.Title)
		}
	case KindRichText:
		if rtp, ok := prop.(*notionapi.RichTextProperty); ok {
			return plainText(rtp.RichText)
		}
	case KindSelect:
		if sp, ok := prop.(*notionapi.SelectProperty); ok {
			return sp.Select.Name
		}
	case KindDate:
		if dp, ok := prop.(*notionapi.DateProperty); ok {
			if dp.Date != nil && dp.Date.Start != nil {
				return time.Time(*dp.Date.Start).Format("2006-01-02")
			}
		}
	}
	return ""
}

// FloatValue extracts a numeric-kind property value from a page's
// properties. A missing property, a wrapper of a different concrete
// type, or a null number all yield 0.
func FloatValue(props notionapi.Properties, name string, kind FieldKind) float64 {
	prop, ok := props[name]
	if !ok {
		return 0
	}

	switch kind {
	case KindNumber:
		if np, ok := prop.(*notionapi.NumberProperty); ok {
			return np.Number
		}
	case KindFormula:
		if fp, ok := prop.(*notionapi.FormulaProperty); ok {
			return fp.Formula.Number
		}
	}
	return 0
}

// plainText concatenates the plain_text values from a slice of RichText.
func plainText(rts []notionapi.RichText) string {
	var s string
	for _, rt := range rts {
		s += rt.PlainText
	}
	return s
}
