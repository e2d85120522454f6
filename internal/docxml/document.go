package docxml

import "encoding/xml"

// Wire structs for the parts of word/document.xml this service reads: runs
// and their text, explicit page breaks, section boundaries, embedded
// drawings and tables. Everything else is skipped during decode.

type documentXML struct {
	XMLName xml.Name `xml:"document"`
	Body    bodyXML  `xml:"body"`
}

// bodyXML keeps paragraphs and tables in document order, which the standard
// struct-tag decoding would lose.
type bodyXML struct {
	Blocks []blockXML
}

type blockXML struct {
	Paragraph *paragraphXML
	Table     *tableXML
}

func (b *bodyXML) UnmarshalXML(d *xml.Decoder, start xml.StartElement) error {
	for {
		tok, err := d.Token()
		if err != nil {
			return err
		}
		switch el := tok.(type) {
		case xml.StartElement:
			switch el.Name.Local {
			case "p":
				var p paragraphXML
				if err := d.DecodeElement(&p, &el); err != nil {
					return err
				}
				b.Blocks = append(b.Blocks, blockXML{Paragraph: &p})
			case "tbl":
				var t tableXML
				if err := d.DecodeElement(&t, &el); err != nil {
					return err
				}
				b.Blocks = append(b.Blocks, blockXML{Table: &t})
			default:
				if err := d.Skip(); err != nil {
					return err
				}
			}
		case xml.EndElement:
			if el.Name == start.Name {
				return nil
			}
		}
	}
}

type paragraphXML struct {
	Props      paragraphPropsXML `xml:"pPr"`
	Runs       []runXML          `xml:"r"`
	Hyperlinks []hyperlinkXML    `xml:"hyperlink"`
}

type paragraphPropsXML struct {
	SectPr *sectPrXML `xml:"sectPr"`
}

// sectPrXML marks a section boundary; its contents are irrelevant here.
type sectPrXML struct{}

type hyperlinkXML struct {
	ID   string   `xml:"id,attr"`
	Runs []runXML `xml:"r"`
}

type runXML struct {
	Texts        []textXML    `xml:"t"`
	Tabs         []struct{}   `xml:"tab"`
	Breaks       []breakXML   `xml:"br"`
	LastRendered []struct{}   `xml:"lastRenderedPageBreak"`
	Drawings     []drawingXML `xml:"drawing"`
}

type textXML struct {
	Space string `xml:"space,attr"`
	Value string `xml:",chardata"`
}

type breakXML struct {
	Type string `xml:"type,attr"` // page, column, textWrapping
}

type drawingXML struct {
	Inline *graphicHolderXML `xml:"inline"`
	Anchor *graphicHolderXML `xml:"anchor"`
}

type graphicHolderXML struct {
	Blip *blipXML `xml:"graphic>graphicData>pic>blipFill>blip"`
}

// blipXML carries the relationship ID of an embedded image.
type blipXML struct {
	Embed string `xml:"embed,attr"`
}

type tableXML struct {
	Rows []tableRowXML `xml:"tr"`
}

type tableRowXML struct {
	Cells []tableCellXML `xml:"tc"`
}

type tableCellXML struct {
	Paragraphs []paragraphXML `xml:"p"`
}

type relationshipsXML struct {
	XMLName       xml.Name          `xml:"Relationships"`
	Relationships []relationshipXML `xml:"Relationship"`
}

type relationshipXML struct {
	ID     string `xml:"Id,attr"`
	Type   string `xml:"Type,attr"`
	Target string `xml:"Target,attr"`
}
