package xmlrpc

import (
	"errors"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func response(value string) []byte {
	return []byte(`<?xml version="1.0"?><methodResponse><params><param>` + value + `</param></params></methodResponse>`)
}

func TestParseResponseValues(t *testing.T) {
	cet := time.FixedZone("", 3600)
	tests := []struct {
		name string
		in   string
		want *Value
	}{
		{"int", "<value><int>42</int></value>", NewInt(42)},
		{"i4", "<value><i4> -7 </i4></value>", NewInt(-7)},
		{"double", "<value><double>123.456</double></value>", &Value{Kind: DoubleKind, Double: 123.456}},
		{"boolean 1", "<value><boolean>1</boolean></value>", NewBoolean(true)},
		{"boolean 0", "<value><boolean>0</boolean></value>", NewBoolean(false)},
		{"boolean true", "<value><boolean>true</boolean></value>", NewBoolean(true)},
		{"boolean false", "<value><boolean>false</boolean></value>", NewBoolean(false)},
		{"string", "<value><string>6.00</string></value>", NewString("6.00")},
		{"escaped string", "<value><string>a &lt;b&gt; &amp;lt; &quot;c&quot;</string></value>", NewString(`a <b> &lt; "c"`)},
		{"empty string", "<value><string></string></value>", NewString("")},
		{"cdata string", "<value><string><![CDATA[a<b&c]]></string></value>", NewString("a<b&c")},
		{"string with comment", "<value><string>a<!-- c -->b</string></value>", NewString("ab")},
		{
			"mixed string",
			"<value><string>x &amp;lt; <![CDATA[&amp;]]> &#8364;&#xD;</string></value>",
			NewString("x &lt; &amp; €\r"),
		},
		{"max int", "<value><int>2147483647</int></value>", NewInt(2147483647)},
		{"min i4", "<value><i4>-2147483648</i4></value>", NewInt(-2147483648)},
		{"flat string", "<value>GEQ0123456:1</value>", NewString("GEQ0123456:1")},
		{"empty value", "<value></value>", NewString("")},
		{"self closing value", "<value/>", NewString("")},
		{
			"dateTime",
			"<value><dateTime.iso8601>20180102T03:04:05+0100</dateTime.iso8601></value>",
			NewDateTime(time.Date(2018, 1, 2, 3, 4, 5, 0, cet)),
		},
		{
			"dateTime without zone",
			"<value><dateTime.iso8601>19980717T14:08:55</dateTime.iso8601></value>",
			NewDateTime(time.Date(1998, 7, 17, 14, 8, 55, 0, time.UTC)),
		},
		{
			"dateTime extended",
			"<value><dateTime.iso8601>2018-01-02T02:04:05Z</dateTime.iso8601></value>",
			NewDateTime(time.Date(2018, 1, 2, 3, 4, 5, 0, cet)),
		},
		{
			"array",
			"<value><array><data><value><string>Foo Country</string></value></data></array></value>",
			NewArray(NewString("Foo Country")),
		},
		{
			"array with whitespace",
			"<value>\n <array>\n  <data>\n   <value><int>1</int></value>\n   <value>x</value>\n  </data>\n </array>\n</value>",
			NewArray(NewInt(1), NewString("x")),
		},
		{"empty array", "<value><array><data/></array></value>", NewArray()},
		{
			"struct",
			"<value><struct><member><name>a</name><value><int>1</int></value></member>" +
				"<member><name>b</name><value><struct></struct></value></member></struct></value>",
			&Value{Kind: StructKind, Struct: []*Member{
				{"a", NewInt(1)},
				{"b", &Value{Kind: StructKind, Struct: []*Member{}}},
			}},
		},
		{
			"struct with code like member name",
			"<value><struct><member><name>x; alert(1)</name><value>1</value></member></struct></value>",
			&Value{Kind: StructKind, Struct: []*Member{{"x; alert(1)", NewString("1")}}},
		},
		{
			"struct duplicate member",
			"<value><struct><member><name>a</name><value><int>1</int></value></member>" +
				"<member><name>a</name><value><int>2</int></value></member></struct></value>",
			&Value{Kind: StructKind, Struct: []*Member{{"a", NewInt(2)}}},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			resp, err := ParseResponse(response(tt.in))
			require.NoError(t, err)
			assert.False(t, resp.Faulted())
			if !resp.Value.Equal(tt.want) {
				t.Errorf("unexpected value: %v, expected: %v", resp.Value, tt.want)
			}
		})
	}
}

func TestParseResponseScenarios(t *testing.T) {
	// multiply(2, 3)
	resp, err := ParseResponse([]byte(
		"<methodResponse><params><param><value><string>6.00</string></value></param></params></methodResponse>",
	))
	require.NoError(t, err)
	assert.False(t, resp.Faulted())
	assert.Equal(t, "6.00", Q(resp.Value).String())

	// search("foo")
	resp, err = ParseResponse([]byte(
		"<methodResponse><params><param><value><array><data><value><string>Foo Country</string></value>" +
			"</data></array></value></param></params></methodResponse>",
	))
	require.NoError(t, err)
	q := Q(resp.Value)
	assert.Equal(t, []string{"Foo Country"}, q.Strings())
	assert.NoError(t, q.Err())

	// unknown method
	resp, err = ParseResponse([]byte(
		"<?xml version=\"1.0\" encoding=\"UTF-8\"?>\n<methodResponse>\n<fault>\n<value><struct>" +
			"<member><name>faultCode</name><value><int>4</int></value></member>" +
			"<member><name>faultString</name><value><string>Unknown method</string></value></member>" +
			"</struct></value>\n</fault>\n</methodResponse>",
	))
	require.NoError(t, err)
	require.True(t, resp.Faulted())
	assert.Equal(t, 4, resp.Fault.Code)
	assert.Equal(t, "Unknown method", resp.Fault.Message)
	assert.Equal(t, StructKind, resp.Value.Kind)
}

func TestParseResponseFaultVariants(t *testing.T) {
	// CCU style: i4 and flat string
	resp, err := ParseResponse([]byte(
		"<methodResponse><fault><value><struct><member><name>faultCode</name><value><i4>-1</i4></value></member>" +
			"<member><name>faultString</name><value>: unknown method name</value></member></struct></value></fault></methodResponse>",
	))
	require.NoError(t, err)
	require.True(t, resp.Faulted())
	assert.Equal(t, &Fault{Code: -1, Message: ": unknown method name"}, resp.Fault)

	for _, doc := range []string{
		// missing faultString
		"<methodResponse><fault><value><struct><member><name>faultCode</name><value><int>4</int></value></member>" +
			"</struct></value></fault></methodResponse>",
		// faultCode is a string
		"<methodResponse><fault><value><struct><member><name>faultCode</name><value>4</value></member>" +
			"<member><name>faultString</name><value>x</value></member></struct></value></fault></methodResponse>",
		// not a struct
		"<methodResponse><fault><value><int>4</int></value></fault></methodResponse>",
	} {
		_, err := ParseResponse([]byte(doc))
		var mfe *MalformedFaultError
		assert.True(t, errors.As(err, &mfe), "unexpected error: %v", err)
	}
}

func TestParseResponseErrors(t *testing.T) {
	malformed := []string{
		"",
		"no xml",
		"<methodCall><methodName>x</methodName></methodCall>",
		"<methodResponse></methodResponse>",
		"<methodResponse><params></params></methodResponse>",
		"<methodResponse><fault></fault></methodResponse>",
		"<methodResponse><params><param><value><int>abc</int></value></param></params></methodResponse>",
		"<methodResponse><params><param><value><int>2147483648</int></value></param></params></methodResponse>",
		"<methodResponse><params><param><value><i4>-2147483649</i4></value></param></params></methodResponse>",
		"<methodResponse><params><param><value><string>a<b/>c</string></value></param></params></methodResponse>",
		"<methodResponse><params><param><value><boolean>2</boolean></value></param></params></methodResponse>",
		"<methodResponse><params><param><value><double>1e</double></value></param></params></methodResponse>",
		"<methodResponse><params><param><value><dateTime.iso8601>yesterday</dateTime.iso8601></value></param></params></methodResponse>",
		"<methodResponse><params><param><value><int>1</int><string>x</string></value></param></params></methodResponse>",
		"<methodResponse><params><param><value><struct><member><name>a</name></member></struct></value></param></params></methodResponse>",
		"<methodResponse><params><param><value><int>1</int></value>",
	}
	for _, doc := range malformed {
		_, err := ParseResponse([]byte(doc))
		var mre *MalformedResponseError
		assert.True(t, errors.As(err, &mre), "document %q, error: %v", doc, err)
	}

	unknown := []string{
		"<methodResponse><params><param><value><base64>SGVsbG8=</base64></value></param></params></methodResponse>",
		"<methodResponse><params><param><value><array><data><value><nil/></value></data></array></value></param></params></methodResponse>",
	}
	for _, doc := range unknown {
		_, err := ParseResponse([]byte(doc))
		var ute *UnknownTypeError
		assert.True(t, errors.As(err, &ute), "document %q, error: %v", doc, err)
	}
}

func TestParseResponseCharset(t *testing.T) {
	doc := []byte("<?xml version=\"1.0\" encoding=\"ISO-8859-1\"?>\n" +
		"<methodResponse><params><param><value>Gr\xfc\xdfe</value></param></params></methodResponse>")
	resp, err := ParseResponse(doc)
	require.NoError(t, err)
	assert.Equal(t, NewString("Grüße"), resp.Value)
}

func TestParseCall(t *testing.T) {
	call, err := ParseCall([]byte(
		"<?xml version=\"1.0\"?>\n<methodCall>\n<methodName>add_line</methodName>\n<params>\n" +
			"<param><value><string>Mike: Says Hi!</string></value></param>\n</params>\n</methodCall>",
	))
	require.NoError(t, err)
	assert.Equal(t, "add_line", call.Method)
	assert.Equal(t, Values{NewString("Mike: Says Hi!")}, call.Args)

	call, err = ParseCall([]byte("<methodCall><methodName>noParams</methodName></methodCall>"))
	require.NoError(t, err)
	assert.Empty(t, call.Args)

	_, err = ParseCall([]byte("<methodResponse></methodResponse>"))
	var mre *MalformedResponseError
	assert.True(t, errors.As(err, &mre))
}

func TestRoundTrip(t *testing.T) {
	dbl, err := NewDouble(-1234.5678)
	require.NoError(t, err)
	values := []*Value{
		NewString(""),
		NewString(`<tag attr="x">&amp; 'q'</tag>`),
		NewString("line 1\nline 2\ttab"),
		NewInt(0),
		NewInt(-2147483648),
		dbl,
		NewBoolean(true),
		NewBoolean(false),
		NewArray(),
		NewArray(NewInt(1), NewArray(NewString("nested")), NewBoolean(false)),
		{Kind: StructKind, Struct: []*Member{}},
		{Kind: StructKind, Struct: []*Member{
			{"z", NewInt(1)},
			{"a", NewArray(NewString("x"))},
			{"m&<n>", &Value{Kind: StructKind, Struct: []*Member{{"deep", NewBoolean(true)}}}},
		}},
	}
	for _, v := range values {
		doc, err := MarshalResponse(&Response{Value: v})
		require.NoError(t, err)
		resp, err := ParseResponse(doc)
		require.NoError(t, err, string(doc))
		if diff := cmp.Diff(v, resp.Value); diff != "" {
			t.Errorf("round trip mismatch (-want +got):\n%s", diff)
		}
	}

	// date/time loses sub-second precision and the zone name
	tm := time.Date(2021, 6, 7, 8, 9, 10, 0, time.FixedZone("X", -90*60))
	doc, err := MarshalResponse(&Response{Value: NewDateTime(tm)})
	require.NoError(t, err)
	resp, err := ParseResponse(doc)
	require.NoError(t, err)
	assert.True(t, resp.Value.Equal(NewDateTime(tm)))
	_, offset := resp.Value.Time.Zone()
	assert.Equal(t, -90*60, offset)
}
