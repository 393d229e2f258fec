package xmlrpc

import (
	"encoding/xml"
	"fmt"
	"strings"
)

// XML object tree of XML-RPC documents. The tree is only used for encoding and
// decoding; applications work with Value.

type methodCall struct {
	MethodName string   `xml:"methodName"`
	Params     *params  `xml:"params"`
	XMLName    xml.Name `xml:"methodCall"`
}

type methodResponse struct {
	Params  *params   `xml:"params"`
	Fault   *xmlValue `xml:"fault>value"`
	XMLName xml.Name  `xml:"methodResponse"`
}

type params struct {
	Param []*param `xml:"param"`
}

type param struct {
	Value *xmlValue `xml:"value"`
}

// xmlValue holds exactly one of the type elements. A value without type
// element is a string (FlatString).
type xmlValue struct {
	I4         *string       `xml:"i4"`
	Int        *string       `xml:"int"`
	Boolean    *string       `xml:"boolean"`
	String     *rawText      `xml:"string"`
	Double     *string       `xml:"double"`
	DateTime   *string       `xml:"dateTime.iso8601"`
	Struct     *xmlStruct    `xml:"struct"`
	Array      *xmlArray     `xml:"array"`
	FlatString string        `xml:",chardata"`
	Unknown    []unknownElem `xml:",any"`
	XMLName    xml.Name      `xml:"value"`
}

// rawText is written unmodified (already escaped with Escape) and read from the
// character data of the element.
type rawText struct {
	Inner string `xml:",innerxml"`
	text  string
}

// UnmarshalXML collects the character data (including CDATA sections) of the
// element. Comments and processing instructions are skipped, nested elements
// are rejected.
func (t *rawText) UnmarshalXML(d *xml.Decoder, start xml.StartElement) error {
	var b strings.Builder
	for {
		tok, err := d.Token()
		if err != nil {
			return err
		}
		switch tt := tok.(type) {
		case xml.CharData:
			b.Write(tt)
		case xml.StartElement:
			return fmt.Errorf("Unexpected element in %s: %s", start.Name.Local, tt.Name.Local)
		case xml.EndElement:
			t.text = b.String()
			return nil
		}
	}
}

type unknownElem struct {
	XMLName xml.Name
}

type xmlStruct struct {
	Members []*xmlMember `xml:"member"`
}

type xmlMember struct {
	Name  string    `xml:"name"`
	Value *xmlValue `xml:"value"`
}

type xmlArray struct {
	Data xmlData `xml:"data"`
}

type xmlData struct {
	Values []*xmlValue `xml:"value"`
}

// typeElems returns the number of type elements.
func (v *xmlValue) typeElems() int {
	n := len(v.Unknown)
	for _, set := range []bool{
		v.I4 != nil, v.Int != nil, v.Boolean != nil, v.String != nil, v.Double != nil,
		v.DateTime != nil, v.Struct != nil, v.Array != nil,
	} {
		if set {
			n++
		}
	}
	return n
}
