package redact_test

import (
	"reflect"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/goliatone/go-profile-cache/pkg/testsupport"
	"github.com/goliatone/go-profile-cache/redact"
)

func TestRedact_ConfigFixture(t *testing.T) {
	var in map[string]any
	testsupport.LoadFixtureJSON(t, testsupport.FixturePath("config.json"), &in)

	out := redact.Default().Redact(in)

	testsupport.CompareWithGoldenJSON(t, testsupport.GoldenPath("config.json"), out)
	assert.Equal(t, "asdfghjkl", in["secret"], "input is not modified")
}

func TestMask(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"ghj", "*****"},
		{"12345", "*****"},
		{"123456", "*****3456"},
		{"asdfghjkl", "*****hjkl"},
		{"héllo wörld", "*****örld"},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			assert.Equal(t, tt.want, redact.Mask(tt.in))
		})
	}
}

func TestRedact_ScalarCases(t *testing.T) {
	r := redact.Default()

	out := r.Redact(map[string]any{
		"password":  "hunter22",
		"token":     "",
		"secretNum": float64(0),
		"cookie":    false,
		"apiKey":    nil,
		"authFlag":  true,
		"name":      "visible",
	}).(map[string]any)

	assert.Equal(t, "*****er22", out["password"])
	assert.Equal(t, "", out["token"], "empty values stay as they are")
	assert.Equal(t, float64(0), out["secretNum"])
	assert.Equal(t, false, out["cookie"])
	assert.Nil(t, out["apiKey"])
	assert.Equal(t, "*****", out["authFlag"])
	assert.Equal(t, "visible", out["name"])
}

func TestRedact_KeyMatchingIsCaseInsensitive(t *testing.T) {
	out := redact.Default().RedactMap(map[string]any{"X-AUTHORIZATION": "Bearer abcdefgh"})
	assert.Equal(t, "*****efgh", out["X-AUTHORIZATION"])
}

func TestRedact_ArraysUnderSecretKeys(t *testing.T) {
	out := redact.Default().RedactMap(map[string]any{
		"keys":  []any{"abcdefgh", "xy"},
		"plain": []any{"abcdefgh"},
	})

	assert.Equal(t, []any{"*****efgh", "*****"}, out["keys"])
	assert.Equal(t, []any{"abcdefgh"}, out["plain"])
}

func TestRedact_JSONStringsUnderPlainKeys(t *testing.T) {
	out := redact.Default().RedactMap(map[string]any{
		"payload": `{"user": {"email": "someone@example.com"}}`,
		"list":    `[{"token": "abcdefgh"}]`,
		"number":  "42",
		"broken":  `{"token": `,
	})

	assert.Equal(t, map[string]any{
		"user": map[string]any{"email": "*****.com"},
	}, out["payload"])
	assert.Equal(t, []any{map[string]any{"token": "*****efgh"}}, out["list"])
	assert.Equal(t, "42", out["number"], "JSON scalars stay strings")
	assert.Equal(t, `{"token": `, out["broken"])
}

func TestRedact_RootValues(t *testing.T) {
	r := redact.Default()

	assert.Nil(t, r.Redact(nil))
	assert.Equal(t, "secret", r.Redact("secret"))
	assert.Equal(t, `{"jwt":"abcdefgh"}`, r.Redact(`{"jwt":"abcdefgh"}`), "root strings are not parsed")
	assert.Equal(t, []any{map[string]any{"jwt": "*****efgh"}}, r.Redact([]any{map[string]any{"jwt": "abcdefgh"}}))
}

func TestRedact_Cycles(t *testing.T) {
	in := map[string]any{
		"oops": map[string]any{"token": "1234"},
	}
	in["key"] = in
	in["foo"] = in

	var out map[string]any
	require.NotPanics(t, func() {
		out = redact.Default().RedactMap(in)
	})

	assert.Equal(t, "*****", out["oops"].(map[string]any)["token"])
	assert.Equal(t, reflect.ValueOf(out).Pointer(), reflect.ValueOf(out["key"]).Pointer(), "cycle is preserved in the copy")
	assert.Equal(t, reflect.ValueOf(out).Pointer(), reflect.ValueOf(out["foo"]).Pointer())
	assert.NotEqual(t, reflect.ValueOf(in).Pointer(), reflect.ValueOf(out).Pointer())
	assert.Equal(t, "1234", in["oops"].(map[string]any)["token"])
}

func TestRedact_SharedReferences(t *testing.T) {
	shared := map[string]any{"password": "abcdefgh"}
	in := map[string]any{"a": shared, "b": shared}

	out := redact.Default().RedactMap(in)

	a := out["a"].(map[string]any)
	b := out["b"].(map[string]any)
	assert.Equal(t, reflect.ValueOf(a).Pointer(), reflect.ValueOf(b).Pointer())
	assert.Equal(t, "*****efgh", a["password"])
	assert.Equal(t, "abcdefgh", shared["password"])
}

func TestRedact_SharedUnderPlainAndSecretKeys(t *testing.T) {
	for i := 0; i < 200; i++ {
		shared := map[string]any{"value": "hunter2-hunter2"}
		in := map[string]any{"public": shared, "password": shared}

		out := redact.Default().RedactMap(in)

		secret := out["password"].(map[string]any)
		require.Equal(t, "*****ter2", secret["value"], "run %d", i)
		assert.Equal(t, "hunter2-hunter2", shared["value"])
	}
}

func TestRedact_CycleThroughSecretKey(t *testing.T) {
	node := map[string]any{"name": "ada"}
	node["self"] = node
	in := map[string]any{"plain": node, "token": node}

	out := redact.Default().RedactMap(in)

	assert.Equal(t, redact.Mask("ada"), out["token"].(map[string]any)["name"])
}

func TestRedact_DeepNesting(t *testing.T) {
	const depth = 100000

	root := map[string]any{}
	node := root
	for i := 0; i < depth; i++ {
		child := map[string]any{}
		node["next"] = child
		node = child
	}
	node["secret"] = "abcdefgh"

	out := redact.Default().RedactMap(root)

	cur := out
	for i := 0; i < depth; i++ {
		cur = cur["next"].(map[string]any)
	}
	assert.Equal(t, "*****efgh", cur["secret"])
}

func TestRedactValue_NormalizesStructs(t *testing.T) {
	type creds struct {
		User     string `json:"user"`
		Password string `json:"password"`
	}

	out := redact.Default().RedactValue(creds{User: "bob", Password: "correct-horse"})
	assert.Equal(t, map[string]any{"user": "bob", "password": "*****orse"}, out)
}

func TestRedactValue_UnserializableReturnedAsIs(t *testing.T) {
	ch := make(chan int)
	assert.Equal(t, ch, redact.Default().RedactValue(ch))
}

func TestNew(t *testing.T) {
	r, err := redact.New("^ssn$")
	require.NoError(t, err)
	assert.True(t, r.Matches("SSN"))
	assert.False(t, r.Matches("ssn_hint"))

	_, err = redact.New("(")
	assert.Error(t, err)
}
