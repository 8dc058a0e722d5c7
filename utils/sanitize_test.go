package utils

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSanitizeTextStripsMarkup(t *testing.T) {
	cases := []struct {
		name string
		in   string
		want string
	}{
		{"plain text untouched", "Please quote CIF Alexandria", "Please quote CIF Alexandria"},
		{"script block", `hello <script>alert("x")</script> world`, "hello  world"},
		{"unclosed script", `hello <script src="evil.js">`, "hello"},
		{"html tags", `<b>bold</b> and <i>italic</i>`, "bold and italic"},
		{"event handler", `<img src=x onerror=alert(1)>`, ""},
		{"javascript uri", `click javascript:alert(1)`, "click alert(1)"},
		{"data uri", `data:text/html;base64grams`, "base64grams"},
		{"nested script does not reassemble", `<scr<script>ipt>alert(1)</script>`, "<scr"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, SanitizeText(tc.in))
		})
	}
}

func TestSanitizeTextIsIdempotent(t *testing.T) {
	inputs := []string{
		`<script>alert("x")</script>`,
		`<img src=x onerror=alert(1)>`,
		`normal text with <b>tags</b>`,
	}
	for _, in := range inputs {
		once := SanitizeText(in)
		assert.Equal(t, once, SanitizeText(once))
	}
}

func TestSanitizeMap(t *testing.T) {
	in := map[string]string{
		"<b>grade</b>": "premium <script>x</script>",
		"origin":       "India",
	}
	out := SanitizeMap(in)
	assert.Equal(t, map[string]string{"grade": "premium", "origin": "India"}, out)

	assert.Nil(t, SanitizeMap(nil))
}

func TestContainsMaliciousContentDetectsRawPayloads(t *testing.T) {
	hits := []string{
		`<script>alert(1)</script>`,
		`< script >alert(1)`,
		`<iframe src="evil">`,
		`javascript:alert(1)`,
		`onmouseover=steal()`,
		`%3Cscript%3E`,
		`&lt;script&gt;`,
		`1 UNION SELECT password FROM users`,
		`insert into users values ('x')`,
		`'; DROP TABLE quotes; --`,
		`delete from quotes`,
		`' OR '1'='1`,
		`%27 OR 1=1`,
	}
	for _, s := range hits {
		assert.True(t, ContainsMaliciousContent(s), "should detect: %s", s)
	}
}

func TestContainsMaliciousContentAllowsNormalText(t *testing.T) {
	clean := []string{
		"Please select the premium grade and drop shipping to Rotterdam",
		"We'd like 20 containers of basmati rice",
		"Union Street warehouse, delivery before 5pm",
		"Contact: amira@example.com, +20 100 555 0199",
	}
	for _, s := range clean {
		assert.False(t, ContainsMaliciousContent(s), "false positive: %s", s)
	}
}

func TestSanitizeThenScanIsClean(t *testing.T) {
	dirty := []string{
		`<script>alert("x")</script>`,
		`<img src=x onerror=alert(1)>`,
		`javascript:void(0)`,
	}
	for _, s := range dirty {
		assert.False(t, ContainsMaliciousContent(SanitizeText(s)), "residue after sanitizing: %s", s)
	}
}
