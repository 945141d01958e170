package config_test

import (
	"fmt"
	"testing"

	"github.com/go-test/deep"
	"github.com/go-viper/mapstructure/v2"
	"github.com/stretchr/testify/require"
	"github.com/treeverse/metastore/pkg/config"
)

type StringsStruct struct {
	S config.Strings
	I int
}

func TestStrings(t *testing.T) {
	cases := []struct {
		Name     string
		Source   map[string]interface{}
		Expected StringsStruct
	}{
		{
			Name: "single string",
			Source: map[string]interface{}{
				"s": "value",
			},
			Expected: StringsStruct{
				S: config.Strings{"value"},
			},
		}, {
			Name: "comma-separated string",
			Source: map[string]interface{}{
				"s": "the,quick,brown",
			},
			Expected: StringsStruct{
				S: config.Strings{"the", "quick", "brown"},
			},
		}, {
			Name: "multiple strings",
			Source: map[string]interface{}{
				"s": []string{"the", "quick", "brown"},
			},
			Expected: StringsStruct{
				S: config.Strings{"the", "quick", "brown"},
			},
		}, {
			Name: "yaml list",
			Source: map[string]interface{}{
				"s": []interface{}{"-", "/var/log/metastore.log"},
			},
			Expected: StringsStruct{
				S: config.Strings{"-", "/var/log/metastore.log"},
			},
		}, {
			Name: "empty string",
			Source: map[string]interface{}{
				"s": "",
			},
			Expected: StringsStruct{
				S: config.Strings{},
			},
		}, {
			Name: "other values",
			Source: map[string]interface{}{
				"s": []string{"yes"},
				"i": 17,
			},
			Expected: StringsStruct{
				S: config.Strings{"yes"},
				I: 17,
			},
		},
	}
	for _, c := range cases {
		t.Run(c.Name, func(t *testing.T) {
			var s StringsStruct

			dc := mapstructure.DecoderConfig{
				DecodeHook: config.DecodeStrings,
				Result:     &s,
			}
			decoder, err := mapstructure.NewDecoder(&dc)
			require.NoError(t, err, "new decoder")
			err = decoder.Decode(c.Source)
			require.NoError(t, err, "decode")
			if diffs := deep.Equal(s, c.Expected); diffs != nil {
				t.Error(diffs)
			}
		})
	}
}

func TestSecureString(t *testing.T) {
	token := config.SecureString("ghp_secret")
	require.Equal(t, "ghp_secret", token.SecureValue())
	require.Equal(t, "[SECRET]", fmt.Sprintf("%v", token))
	text, err := token.MarshalText()
	require.NoError(t, err)
	require.Equal(t, "[SECRET]", string(text))

	empty, err := config.SecureString("").MarshalText()
	require.NoError(t, err)
	require.Empty(t, empty)
}
