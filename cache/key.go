package cache

import (
	"encoding"
	"encoding/json"
	"fmt"
	"reflect"
	"strings"
)

const keySep = ":"

var prefixEscaper = strings.NewReplacer(`\`, `\\`, keySep, `\`+keySep)

var (
	keyerType         = reflect.TypeOf((*Keyer)(nil)).Elem()
	jsonMarshalerType = reflect.TypeOf((*json.Marshaler)(nil)).Elem()
	textMarshalerType = reflect.TypeOf((*encoding.TextMarshaler)(nil)).Elem()
)

// Keyer 自定义参数在缓存key中的表示
type Keyer interface {
	CacheKey() string
}

// SerializationError 参数无法序列化为缓存key
type SerializationError struct {
	Prefix string
	Index  int
	Err    error
}

func (e *SerializationError) Error() string {
	return fmt.Sprintf("缓存key %q 的第%d个参数无法序列化: %v", e.Prefix, e.Index, e.Err)
}

func (e *SerializationError) Unwrap() error {
	return e.Err
}

// BuildKey 由前缀和参数生成确定的缓存key，结构相同的参数得到相同的key。
// 每个参数编码为 "类型=json"，类型不同的参数不会得到相同的key。
func BuildKey(prefix string, args ...any) (string, error) {
	var sb strings.Builder
	sb.WriteString(prefixEscaper.Replace(prefix))
	for i, arg := range args {
		part, err := encodeArg(arg)
		if err != nil {
			return "", &SerializationError{Prefix: prefix, Index: i, Err: err}
		}
		sb.WriteString(keySep)
		sb.WriteString(part)
	}
	return sb.String(), nil
}

// MustBuildKey 同 BuildKey，出错时panic
func MustBuildKey(prefix string, args ...any) string {
	key, err := BuildKey(prefix, args...)
	if err != nil {
		panic(err)
	}
	return key
}

// encodeArg json对map的key排序，并拒绝循环引用、chan、func等类型
func encodeArg(arg any) (string, error) {
	typeName := fmt.Sprintf("%T", arg)
	if k, ok := arg.(Keyer); ok {
		b, err := json.Marshal(k.CacheKey())
		if err != nil {
			return "", err
		}
		return typeName + "#" + string(b), nil
	}
	if arg != nil {
		if t := opaqueStruct(reflect.TypeOf(arg), make(map[reflect.Type]bool)); t != nil {
			return "", fmt.Errorf("类型 %s 没有可导出的字段，请实现 Keyer 或 json.Marshaler", t)
		}
	}
	b, err := json.Marshal(arg)
	if err != nil {
		return "", err
	}
	return typeName + "=" + string(b), nil
}

// opaqueStruct 找出json编码后会丢失全部内容的结构体类型
func opaqueStruct(t reflect.Type, seen map[reflect.Type]bool) reflect.Type {
	if seen[t] {
		return nil
	}
	seen[t] = true
	if t.Implements(keyerType) || t.Implements(jsonMarshalerType) || t.Implements(textMarshalerType) {
		return nil
	}
	switch t.Kind() {
	case reflect.Pointer, reflect.Slice, reflect.Array:
		return opaqueStruct(t.Elem(), seen)
	case reflect.Map:
		return opaqueStruct(t.Elem(), seen)
	case reflect.Struct:
		if t.NumField() == 0 {
			return nil
		}
		visible := 0
		for i := 0; i < t.NumField(); i++ {
			f := t.Field(i)
			if f.Tag.Get("json") == "-" {
				continue
			}
			if !f.IsExported() && !(f.Anonymous && f.Type.Kind() == reflect.Struct) {
				continue
			}
			if inner := opaqueStruct(f.Type, seen); inner != nil {
				return inner
			}
			visible++
		}
		if visible == 0 {
			return t
		}
	}
	return nil
}
