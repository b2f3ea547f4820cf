package apitests

import (
	"fmt"
	"strings"

	"github.com/autolearn-jp/api-contract-tests/fixtures"
	"github.com/autolearn-jp/api-contract-tests/servicedef"

	"gopkg.in/launchdarkly/go-sdk-common.v2/ldvalue"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func DoWordsListingTest(t *T) {
	t.LoginAsAdmin()
	t.SeedFixture()

	resp := t.Get(servicedef.WordsPath)
	t.Detail("status %d", resp.Status)
	t.RequireStatus(resp, 200, "word list should be readable by admin")

	words := t.RequireJSON(resp)
	require.Equal(t, ldvalue.ArrayType, words.Type(), "word list is not an array: %s", words)
	if words.Count() == 0 {
		t.Detail("status %d, no words found", resp.Status)
		return
	}
	t.Detail("status %d, %d words", resp.Status, words.Count())
	first := words.GetByIndex(0)
	for _, key := range []string{servicedef.FieldID, servicedef.FieldKanji} {
		assert.True(t, hasKey(first, key), "first word has no %q property: %s", key, first)
	}
}

func DoMarkdownParsingTest(t *T) {
	t.LoginAsAdmin()
	t.SeedFixture()

	resp := t.Get(servicedef.WordsPath)
	t.Detail("status %d", resp.Status)
	t.RequireStatus(resp, 200, "word list should be readable by admin")

	words := t.RequireJSON(resp)
	require.Equal(t, ldvalue.ArrayType, words.Type(), "word list is not an array: %s", words)

	expect := t.Fixture().Expect
	matches := findWords(words, expect.Kanji)
	if len(matches) != 1 {
		t.Detail("status %d, found %d records for %q among %d words", resp.Status, len(matches), expect.Kanji, words.Count())
	}
	require.Len(t, matches, 1, "expected exactly one record for %q", expect.Kanji)
	word := matches[0]

	var missing, incorrect []string
	for _, field := range expect.Fields() {
		actual := word.GetByKey(field.Name).StringValue()
		switch {
		case actual == "":
			missing = append(missing, field.Name)
			t.Errorf("field %q is missing, expected it to contain %q", field.Name, field.Contains)
		case !fixtures.Contains(actual, field.Contains):
			incorrect = append(incorrect, fmt.Sprintf("%s: expected %q, got %q", field.Name, field.Contains, actual))
			t.Errorf("field %q is %q, expected it to contain %q", field.Name, actual, field.Contains)
		}
	}

	tags := stringsOf(word.GetByKey(servicedef.FieldTags))
	if missingTags := fixtures.MissingTags(expect.Tags, tags); len(missingTags) > 0 {
		incorrect = append(incorrect, fmt.Sprintf("tags: expected %v, got %v", expect.Tags, tags))
		t.Errorf("tags %v do not include %v", tags, missingTags)
	}

	message := "all fields parsed correctly"
	if len(missing) > 0 || len(incorrect) > 0 {
		message = "parsing errors"
		if len(missing) > 0 {
			message += fmt.Sprintf(", missing: %s", strings.Join(missing, ", "))
		}
		if len(incorrect) > 0 {
			message += fmt.Sprintf(", incorrect: %s", strings.Join(incorrect, "; "))
		}
	}
	t.Detail("status %d, %s", resp.Status, message)
}

func DoGuestListingTest(t *T) {
	t.ForceLogout()
	t.LoginAsGuest()

	resp := t.Get(servicedef.WordsPath)
	t.Detail("status %d", resp.Status)
	t.RequireStatus(resp, 200, "word list should be readable by any authenticated user")
	words := t.RequireJSON(resp)
	assert.Equal(t, ldvalue.ArrayType, words.Type(), "word list is not an array: %s", words)
}

// findWords returns the records whose kanji equals the given one.
func findWords(words ldvalue.Value, kanji string) []ldvalue.Value {
	var ret []ldvalue.Value
	for i := 0; i < words.Count(); i++ {
		w := words.GetByIndex(i)
		if fixtures.Equal(w.GetByKey(servicedef.FieldKanji).StringValue(), kanji) {
			ret = append(ret, w)
		}
	}
	return ret
}

func hasKey(v ldvalue.Value, key string) bool {
	for _, k := range v.Keys() {
		if k == key {
			return true
		}
	}
	return false
}

// stringsOf returns the string elements of an array value.
func stringsOf(v ldvalue.Value) []string {
	var ret []string
	for i := 0; i < v.Count(); i++ {
		if e := v.GetByIndex(i); e.Type() == ldvalue.StringType {
			ret = append(ret, e.StringValue())
		}
	}
	return ret
}
