package coder

import (
	"fmt"
	"math"
	"reflect"
	"strconv"
)

// Assign stores src, a value produced by the sqlite3 driver, in dst. dst
// must be settable and of a bool, integer, float or string kind. Integer
// destinations are range checked.
func Assign(dst reflect.Value, src any) error {
	switch dst.Kind() {
	case reflect.Bool:
		switch s := src.(type) {
		case bool:
			dst.SetBool(s)
			return nil
		case int64:
			dst.SetBool(s != 0)
			return nil
		case string, []byte:
			b, err := strconv.ParseBool(asString(s))
			if err != nil {
				return err
			}
			dst.SetBool(b)
			return nil
		}
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		var i int64
		switch s := src.(type) {
		case int64:
			i = s
		case bool:
			if s {
				i = 1
			}
		case float64:
			if s != math.Trunc(s) {
				return fmt.Errorf("cannot store %v in %s without loss", s, dst.Type())
			}
			i = int64(s)
		case string, []byte:
			var err error
			if i, err = strconv.ParseInt(asString(s), 10, 64); err != nil {
				return err
			}
		default:
			return unsupported(dst, src)
		}
		if dst.OverflowInt(i) {
			return fmt.Errorf("value %d overflows %s", i, dst.Type())
		}
		dst.SetInt(i)
		return nil
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		var u uint64
		switch s := src.(type) {
		case int64:
			if s < 0 {
				return fmt.Errorf("value %d overflows %s", s, dst.Type())
			}
			u = uint64(s)
		case string, []byte:
			var err error
			if u, err = strconv.ParseUint(asString(s), 10, 64); err != nil {
				return err
			}
		default:
			return unsupported(dst, src)
		}
		if dst.OverflowUint(u) {
			return fmt.Errorf("value %d overflows %s", u, dst.Type())
		}
		dst.SetUint(u)
		return nil
	case reflect.Float32, reflect.Float64:
		var f float64
		switch s := src.(type) {
		case float64:
			f = s
		case int64:
			f = float64(s)
		case string, []byte:
			var err error
			if f, err = strconv.ParseFloat(asString(s), 64); err != nil {
				return err
			}
		default:
			return unsupported(dst, src)
		}
		if dst.OverflowFloat(f) {
			return fmt.Errorf("value %v overflows %s", f, dst.Type())
		}
		dst.SetFloat(f)
		return nil
	case reflect.String:
		switch s := src.(type) {
		case string:
			dst.SetString(s)
			return nil
		case []byte:
			dst.SetString(string(s))
			return nil
		case int64:
			dst.SetString(strconv.FormatInt(s, 10))
			return nil
		case float64:
			dst.SetString(strconv.FormatFloat(s, 'g', -1, 64))
			return nil
		}
	}
	return unsupported(dst, src)
}

func asString(src any) string {
	switch s := src.(type) {
	case string:
		return s
	case []byte:
		return string(s)
	}
	return fmt.Sprint(src)
}

func unsupported(dst reflect.Value, src any) error {
	return fmt.Errorf("cannot convert %T to %s", src, dst.Type())
}
