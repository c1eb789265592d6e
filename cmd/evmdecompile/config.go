package main

import (
	"bufio"
	"errors"
	"fmt"
	"os"
	"reflect"
	"unicode"

	"github.com/bnb-chain/evmdecompiler/core/decompiler"
	"github.com/naoina/toml"
	"github.com/urfave/cli/v2"
)

// These settings ensure that TOML keys use the same names as Go struct fields.
var tomlSettings = toml.Config{
	NormFieldName: func(rt reflect.Type, key string) string {
		return key
	},
	FieldToKey: func(rt reflect.Type, field string) string {
		return field
	},
	MissingField: func(rt reflect.Type, field string) error {
		var link string
		if unicode.IsUpper(rune(rt.Name()[0])) && rt.PkgPath() != "main" {
			link = fmt.Sprintf(", see https://godoc.org/%s#%s for available fields", rt.PkgPath(), rt.Name())
		}
		return fmt.Errorf("field '%s' is not defined in %s%s", field, rt.String(), link)
	},
}

type evmdecompileConfig struct {
	Decompiler decompiler.Config
}

func loadConfig(file string, cfg *evmdecompileConfig) error {
	f, err := os.Open(file)
	if err != nil {
		return err
	}
	defer f.Close()

	err = tomlSettings.NewDecoder(bufio.NewReader(f)).Decode(cfg)
	// Add file name to errors that have a line number.
	if _, ok := err.(*toml.LineError); ok {
		err = errors.New(file + ", " + err.Error())
	}
	return err
}

// makeConfig loads the defaults, then the config file, then flags.
func makeConfig(ctx *cli.Context) (*evmdecompileConfig, error) {
	cfg := &evmdecompileConfig{Decompiler: decompiler.DefaultConfig}
	if file := ctx.String(configFileFlag.Name); file != "" {
		if err := loadConfig(file, cfg); err != nil {
			return nil, err
		}
	}
	if ctx.IsSet(maxStatesFlag.Name) {
		cfg.Decompiler.MaxBlockStates = ctx.Int(maxStatesFlag.Name)
	}
	if ctx.IsSet(keepMetadataFlag.Name) {
		cfg.Decompiler.StripMetadata = !ctx.Bool(keepMetadataFlag.Name)
	}
	if files := ctx.StringSlice(signaturesFlag.Name); len(files) > 0 {
		cfg.Decompiler.SignatureFiles = append(cfg.Decompiler.SignatureFiles, files...)
	}
	return cfg, nil
}

func dumpConfig(ctx *cli.Context) error {
	cfg, err := makeConfig(ctx)
	if err != nil {
		return err
	}
	out, err := tomlSettings.Marshal(cfg)
	if err != nil {
		return err
	}
	_, err = ctx.App.Writer.Write(out)
	return err
}
