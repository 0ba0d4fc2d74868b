// Package config loads flag defaults from a YAML file for kong.
//
// Keys are flag names with dashes or underscores, and nested sections are
// joined to their children with an underscore:
//
//	debug: true
//	telegram:
//	  token: "123:abc"
//	  chat-id: 42
//
// sets --debug, --telegram-token and --telegram-chat-id.
package config

import (
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/alecthomas/kong"
	"gopkg.in/yaml.v3"
)

// YAML is a kong.ConfigurationLoader.
func YAML(r io.Reader) (kong.Resolver, error) {
	raw := map[string]any{}
	if err := yaml.NewDecoder(r).Decode(&raw); err != nil && !errors.Is(err, io.EOF) {
		return nil, fmt.Errorf("failed to parse config file: %w", err)
	}

	values := map[string]string{}
	if err := flatten("", raw, values); err != nil {
		return nil, err
	}

	var resolver kong.ResolverFunc = func(_ *kong.Context, _ *kong.Path, flag *kong.Flag) (any, error) {
		if v, ok := values[normalize(flag.Name)]; ok {
			return v, nil
		}
		return nil, nil
	}
	return resolver, nil
}

func normalize(key string) string {
	return strings.ReplaceAll(strings.ToLower(key), "-", "_")
}

func flatten(prefix string, in map[string]any, out map[string]string) error {
	for k, v := range in {
		key := normalize(k)
		if prefix != "" {
			key = prefix + "_" + key
		}
		switch val := v.(type) {
		case map[string]any:
			if err := flatten(key, val, out); err != nil {
				return err
			}
		case []any:
			parts := make([]string, len(val))
			for i, item := range val {
				parts[i] = fmt.Sprint(item)
			}
			out[key] = strings.Join(parts, ",")
		case nil:
		default:
			out[key] = fmt.Sprint(val)
		}
	}
	return nil
}
