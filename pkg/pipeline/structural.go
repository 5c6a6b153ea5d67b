/*
Copyright 2024 The Taibai Authors.

Licensed under the Apache License, Version 2.0 (the "License");
you may not use this file except in compliance with the License.
You may obtain a copy of the License at

    http://www.apache.org/licenses/LICENSE-2.0

Unless required by applicable law or agreed to in writing, software
distributed under the License is distributed on an "AS IS" BASIS,
WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
See the License for the specific language governing permissions and
limitations under the License.
*/

package pipeline

import (
	"fmt"
	"reflect"
)

// convertStructural copies every field whose name and shape match between src
// and dst, both pointers to structs. It is the structural layer of a hub
// conversion: fields that renamed, split or changed meaning are left for the
// semantic layer that runs afterwards. Copies never alias src: slices and
// maps are duplicated so the two representations stay independent.
//
// Shape compatibility is intentionally narrow: identical types, primitives of
// the same kind (covering named enum strings), pointer/value wrapping of a
// compatible shape, and slices, maps and structs thereof. Anything else is
// skipped, never coerced.
func convertStructural(src, dst interface{}) error {
	sv := reflect.ValueOf(src)
	dv := reflect.ValueOf(dst)
	if sv.Kind() != reflect.Pointer || dv.Kind() != reflect.Pointer || sv.IsNil() || dv.IsNil() {
		return fmt.Errorf("structural conversion requires non-nil struct pointers, got %T and %T", src, dst)
	}
	if sv.Elem().Kind() != reflect.Struct || dv.Elem().Kind() != reflect.Struct {
		return fmt.Errorf("structural conversion requires struct pointers, got %T and %T", src, dst)
	}
	copyStruct(sv.Elem(), dv.Elem())
	return nil
}

func copyStruct(src, dst reflect.Value) {
	dt := dst.Type()
	st := src.Type()
	for i := 0; i < dt.NumField(); i++ {
		f := dt.Field(i)
		if !f.IsExported() {
			continue
		}
		// TypeMeta is envelope bookkeeping owned by decode and encode, and
		// the hub carries none.
		if f.Name == "TypeMeta" {
			continue
		}
		sf, ok := st.FieldByName(f.Name)
		if !ok || !sf.IsExported() {
			continue
		}
		copyValue(src.FieldByIndex(sf.Index), dst.Field(i))
	}
}

func copyValue(src, dst reflect.Value) {
	if src.Type() == dst.Type() {
		dst.Set(deepCopy(src))
		return
	}

	switch {
	case src.Kind() == reflect.Pointer && dst.Kind() == reflect.Pointer:
		if src.IsNil() {
			dst.Set(reflect.Zero(dst.Type()))
			return
		}
		out := reflect.New(dst.Type().Elem())
		copyValue(src.Elem(), out.Elem())
		dst.Set(out)

	case src.Kind() == reflect.Pointer:
		// Optional to required: an absent value keeps the zero value.
		if src.IsNil() {
			return
		}
		copyValue(src.Elem(), dst)

	case dst.Kind() == reflect.Pointer:
		out := reflect.New(dst.Type().Elem())
		copyValue(src, out.Elem())
		dst.Set(out)

	case src.Kind() == reflect.Struct && dst.Kind() == reflect.Struct:
		copyStruct(src, dst)

	case src.Kind() == reflect.Slice && dst.Kind() == reflect.Slice:
		if src.IsNil() {
			dst.Set(reflect.Zero(dst.Type()))
			return
		}
		out := reflect.MakeSlice(dst.Type(), src.Len(), src.Len())
		for i := 0; i < src.Len(); i++ {
			copyValue(src.Index(i), out.Index(i))
		}
		dst.Set(out)

	case src.Kind() == reflect.Map && dst.Kind() == reflect.Map:
		if src.IsNil() {
			dst.Set(reflect.Zero(dst.Type()))
			return
		}
		out := reflect.MakeMapWithSize(dst.Type(), src.Len())
		keyType := dst.Type().Key()
		iter := src.MapRange()
		for iter.Next() {
			k := iter.Key()
			if k.Type() != keyType {
				if !convertiblePrimitive(k.Type(), keyType) {
					return
				}
				k = k.Convert(keyType)
			}
			v := reflect.New(dst.Type().Elem()).Elem()
			copyValue(iter.Value(), v)
			out.SetMapIndex(k, v)
		}
		dst.Set(out)

	case convertiblePrimitive(src.Type(), dst.Type()):
		dst.Set(src.Convert(dst.Type()))

	default:
		// Incompatible shape: the semantic layer's job, not ours.
	}
}

// convertiblePrimitive reports whether two types are primitives of the same
// kind, e.g. a plain string and a named enum string.
func convertiblePrimitive(src, dst reflect.Type) bool {
	if src.Kind() != dst.Kind() || !src.ConvertibleTo(dst) {
		return false
	}
	switch src.Kind() {
	case reflect.Bool, reflect.String,
		reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64,
		reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64,
		reflect.Float32, reflect.Float64:
		return true
	default:
		return false
	}
}

// deepCopy duplicates a value of any type onto fresh backing storage. Struct
// types with unexported fields (resource.Quantity, metav1.Time and friends)
// are copied by value; they are treated as immutable scalars throughout the
// engine.
func deepCopy(src reflect.Value) reflect.Value {
	switch src.Kind() {
	case reflect.Pointer:
		if src.IsNil() {
			return src
		}
		out := reflect.New(src.Type().Elem())
		out.Elem().Set(deepCopy(src.Elem()))
		return out

	case reflect.Slice:
		if src.IsNil() {
			return src
		}
		if src.Type().Elem().Kind() == reflect.Uint8 {
			out := reflect.MakeSlice(src.Type(), src.Len(), src.Len())
			reflect.Copy(out, src)
			return out
		}
		out := reflect.MakeSlice(src.Type(), src.Len(), src.Len())
		for i := 0; i < src.Len(); i++ {
			out.Index(i).Set(deepCopy(src.Index(i)))
		}
		return out

	case reflect.Map:
		if src.IsNil() {
			return src
		}
		out := reflect.MakeMapWithSize(src.Type(), src.Len())
		iter := src.MapRange()
		for iter.Next() {
			out.SetMapIndex(iter.Key(), deepCopy(iter.Value()))
		}
		return out

	case reflect.Struct:
		if hasUnexportedField(src.Type()) {
			return src
		}
		out := reflect.New(src.Type()).Elem()
		for i := 0; i < src.NumField(); i++ {
			out.Field(i).Set(deepCopy(src.Field(i)))
		}
		return out

	default:
		return src
	}
}

func hasUnexportedField(t reflect.Type) bool {
	for i := 0; i < t.NumField(); i++ {
		if !t.Field(i).IsExported() {
			return true
		}
	}
	return false
}
