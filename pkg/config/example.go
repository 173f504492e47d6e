package config

import (
	"bytes"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"reflect"
	"runtime"
	"strconv"
	"strings"
	"testing"
	"time"

	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/providers/structs"
	"github.com/knadh/koanf/v2"
	yamlv3 "go.yaml.in/yaml/v3"
)

// exampleHeader 示例文件头注释
const exampleHeader = "配置示例文件, 复制此文件为 config.yaml 并根据需要修改"

// ExampleYAML 将配置结构体序列化为带注释的 YAML，注释取自 desc 标签。
//
//	data := config.ExampleYAML(DefaultConfig())
//	os.WriteFile("config/config.example.yaml", data, 0644)
func ExampleYAML[T any](cfg T) []byte {
	node := structNode(reflect.ValueOf(cfg))
	node.HeadComment = exampleHeader

	var buf bytes.Buffer
	enc := yamlv3.NewEncoder(&buf)
	enc.SetIndent(2)
	_ = enc.Encode(node)
	_ = enc.Close()

	return buf.Bytes()
}

// MarshalYAML 将配置结构体序列化为不带注释的 YAML
func MarshalYAML[T any](cfg T) ([]byte, error) {
	k := koanf.New(".")
	if err := k.Load(structs.Provider(cfg, "koanf"), nil); err != nil {
		return nil, fmt.Errorf("failed to load config struct: %w", err)
	}
	return k.Marshal(yaml.Parser())
}

func structNode(val reflect.Value) *yamlv3.Node {
	if val.Kind() == reflect.Ptr {
		if val.IsNil() {
			return &yamlv3.Node{Kind: yamlv3.ScalarNode, Tag: "!!null"}
		}
		val = val.Elem()
	}

	typ := val.Type()
	node := &yamlv3.Node{Kind: yamlv3.MappingNode}
	for i := range typ.NumField() {
		field := typ.Field(i)
		key := field.Tag.Get("koanf")
		if key == "" || key == "-" {
			continue
		}
		desc := field.Tag.Get("desc")

		keyNode := &yamlv3.Node{Kind: yamlv3.ScalarNode, Value: key}
		var valNode *yamlv3.Node
		switch {
		case isNestedStruct(field.Type):
			valNode = structNode(val.Field(i))
			keyNode.HeadComment = "\n" + desc
		case field.Type.Kind() == reflect.Slice, strings.Contains(desc, "\n"):
			// 复杂类型和多行注释放在 key 上方
			valNode = scalarNode(val.Field(i))
			keyNode.HeadComment = "\n" + desc
		default:
			valNode = scalarNode(val.Field(i))
			valNode.LineComment = desc
		}

		node.Content = append(node.Content, keyNode, valNode)
	}

	return node
}

func scalarNode(val reflect.Value) *yamlv3.Node {
	switch v := val.Interface().(type) {
	case time.Duration:
		return &yamlv3.Node{Kind: yamlv3.ScalarNode, Value: v.String()}
	case time.Time:
		return &yamlv3.Node{Kind: yamlv3.ScalarNode, Value: v.Format(time.RFC3339)}
	}

	switch val.Kind() {
	case reflect.String:
		return &yamlv3.Node{Kind: yamlv3.ScalarNode, Value: val.String(), Style: yamlv3.DoubleQuotedStyle}
	case reflect.Bool:
		return &yamlv3.Node{Kind: yamlv3.ScalarNode, Value: strconv.FormatBool(val.Bool())}
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		return &yamlv3.Node{Kind: yamlv3.ScalarNode, Value: strconv.FormatInt(val.Int(), 10)}
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		return &yamlv3.Node{Kind: yamlv3.ScalarNode, Value: strconv.FormatUint(val.Uint(), 10)}
	case reflect.Slice:
		node := &yamlv3.Node{Kind: yamlv3.SequenceNode}
		if val.Len() == 0 {
			node.Style = yamlv3.FlowStyle
		}
		for j := range val.Len() {
			elem := scalarNode(val.Index(j))
			elem.Style = 0
			node.Content = append(node.Content, elem)
		}
		return node
	default:
		return &yamlv3.Node{Kind: yamlv3.ScalarNode, Value: fmt.Sprintf("%v", val.Interface())}
	}
}

// ConfigTestHelper 配置测试辅助工具
//
//	var helper = config.ConfigTestHelper[Config]{
//	    ExamplePath: "config/config.example.yaml",
//	    ConfigPath:  "config/config.yaml",
//	}
//
//	func TestWriteExample(t *testing.T)   { helper.WriteExampleFile(t, DefaultConfig()) }
//	func TestConfigKeysValid(t *testing.T) { helper.ValidateKeys(t) }
type ConfigTestHelper[T any] struct {
	ExamplePath string // 示例文件路径 (相对于 go.mod 所在目录)
	ConfigPath  string // 配置文件路径 (相对于 go.mod 所在目录)
}

// WriteExampleFile 将默认配置写为示例文件
func (h *ConfigTestHelper[T]) WriteExampleFile(t *testing.T, defaultConfig T) {
	t.Helper()

	root, err := FindProjectRoot(1)
	if err != nil {
		t.Fatalf("无法找到项目根目录: %v", err)
	}

	outputPath := filepath.Join(root, h.ExamplePath)
	if err := os.MkdirAll(filepath.Dir(outputPath), 0o750); err != nil {
		t.Fatalf("创建目录失败: %v", err)
	}
	if err := os.WriteFile(outputPath, ExampleYAML(defaultConfig), 0o600); err != nil {
		t.Fatalf("写入配置文件失败: %v", err)
	}

	t.Logf("已生成配置示例文件: %s", outputPath)
}

// ValidateKeys 校验配置文件中的键都在示例文件中定义，配置文件不存在时跳过
func (h *ConfigTestHelper[T]) ValidateKeys(t *testing.T) {
	t.Helper()

	root, err := FindProjectRoot(1)
	if err != nil {
		t.Fatalf("无法找到项目根目录: %v", err)
	}

	configPath := filepath.Join(root, h.ConfigPath)
	examplePath := filepath.Join(root, h.ExamplePath)

	if _, statErr := os.Stat(configPath); os.IsNotExist(statErr) {
		t.Skipf("%s 不存在，跳过验证", h.ConfigPath)
	}

	exampleKeys, err := loadConfigKeys(examplePath)
	if err != nil {
		t.Fatalf("无法加载 %s: %v", h.ExamplePath, err)
	}
	configKeys, err := loadConfigKeys(configPath)
	if err != nil {
		t.Fatalf("无法加载 %s: %v", h.ConfigPath, err)
	}

	valid := make(map[string]bool, len(exampleKeys))
	for _, key := range exampleKeys {
		valid[key] = true
	}
	for _, key := range configKeys {
		if !valid[key] {
			t.Errorf("%s 包含无效配置项: %s", h.ConfigPath, key)
		}
	}
}

// FindProjectRoot 通过查找 go.mod 定位项目根目录。
//
// skip 为跳过的调用栈层数，0 表示调用者。
func FindProjectRoot(skip int) (string, error) {
	_, filename, _, ok := runtime.Caller(skip + 1)
	if !ok {
		return "", errors.New("无法获取当前文件路径")
	}

	dir := filepath.Dir(filename)
	for {
		if _, err := os.Stat(filepath.Join(dir, "go.mod")); err == nil {
			return dir, nil
		}
		parent := filepath.Dir(dir)
		if parent == dir {
			return "", errors.New("未找到 go.mod")
		}
		dir = parent
	}
}

// loadConfigKeys 加载配置文件 (YAML 或 JSON) 并返回全部键
func loadConfigKeys(path string) ([]string, error) {
	k := koanf.New(".")
	if err := k.Load(file.Provider(path), ParserForPath(path)); err != nil {
		return nil, fmt.Errorf("加载文件失败: %w", err)
	}
	return k.Keys(), nil
}
