package container

import (
	"fmt"
	"reflect"

	stgpsr "github.com/yuin/stagparser"
)

// LayoutFromStruct derives a Layout by reflecting over a Go struct's
// `tiledb:"dtype=...,ftype=attr|dim[,var]"` tags, in exactly the same
// vocabulary the teacher repository's schemaAttrs/CreateAttr use to build a
// TileDB array schema from a tagged struct (see tiledb.go, schema.go in the
// reference GSF library). Dimension-tagged fields (ftype=dim) are skipped:
// BAG's dimensions are the grid row/col (or the 1-D index) axes managed
// directly by the Container, never a record field.
func LayoutFromStruct(t any) (Layout, error) {
	var layout Layout

	values := reflect.ValueOf(t)
	if values.Kind() == reflect.Ptr {
		values = values.Elem()
	}
	types := values.Type()

	tdbDefs, err := stgpsr.ParseStruct(t, "tiledb")
	if err != nil {
		return layout, fmt.Errorf("container: parsing tiledb tags: %w", err)
	}

	for i := 0; i < types.NumField(); i++ {
		goName := types.Field(i).Name
		fieldDefs := tdbDefs[goName]

		defs := make(map[string]stgpsr.Definition, len(fieldDefs))
		for _, d := range fieldDefs {
			defs[d.Name()] = d
		}

		ftypeDef, ok := defs["ftype"]
		if !ok {
			return layout, fmt.Errorf("container: field %s missing ftype tag", goName)
		}
		ftype, _ := ftypeDef.Attribute("ftype")
		if ftype == "dim" {
			continue
		}

		dtypeDef, ok := defs["dtype"]
		if !ok {
			return layout, fmt.Errorf("container: field %s missing dtype tag", goName)
		}
		dtype, _ := dtypeDef.Attribute("dtype")

		et, err := elementTypeFromTag(dtype.(string))
		if err != nil {
			return layout, fmt.Errorf("container: field %s: %w", goName, err)
		}

		arrayLen := 0
		if arrDef, ok := defs["arraylen"]; ok {
			if n, ok := arrDef.Attribute("arraylen"); ok {
				arrayLen = int(n.(int64))
			}
		}

		// The wire name defaults to the Go field name but may be overridden
		// with a `name=...` tag attribute when the specification's literal
		// on-disk field spelling (e.g. "track_code") differs from Go's
		// exported-identifier casing convention.
		wireName := goName
		if nameDef, ok := defs["name"]; ok {
			if n, ok := nameDef.Attribute("name"); ok {
				wireName = n.(string)
			}
		}

		layout.Fields = append(layout.Fields, Field{
			Name:     wireName,
			Type:     et,
			ArrayLen: arrayLen,
		})
	}

	return layout, nil
}

func elementTypeFromTag(dtype string) (ElementType, error) {
	switch dtype {
	case "float32":
		return Float32, nil
	case "float64":
		return Float64, nil
	case "uint8":
		return Uint8, nil
	case "uint16":
		return Uint16, nil
	case "uint32":
		return Uint32, nil
	case "uint64":
		return Uint64, nil
	case "bool":
		return Bool, nil
	case "string":
		return String, nil
	default:
		return 0, fmt.Errorf("unsupported dtype %q", dtype)
	}
}
