package envres

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/lwmacct/251220-go-bin-proprw/pkg/rewrite"
)

var (
	// ErrMissingEnv 规则依赖的环境变量未设置
	ErrMissingEnv = errors.New("missing environment variable")

	// ErrInvalidBinding 绑定表达式格式错误
	ErrInvalidBinding = errors.New("invalid binding")
)

// MissingEnvError 描述缺失的环境变量及引用它的 Token
type MissingEnvError struct {
	Name  string
	Token string
}

func (e *MissingEnvError) Error() string {
	if e.Token == "" {
		return fmt.Sprintf("%s: %s", ErrMissingEnv, e.Name)
	}
	return fmt.Sprintf("%s: %s (token %s)", ErrMissingEnv, e.Name, e.Token)
}

func (e *MissingEnvError) Is(target error) bool { return target == ErrMissingEnv }

// Env 已解析的环境变量映射
type Env map[string]string

// FromEnviron 从当前进程环境构建 [Env]
func FromEnviron() Env {
	env := make(Env)
	for _, kv := range os.Environ() {
		name, value, ok := strings.Cut(kv, "=")
		if ok {
			env[name] = value
		}
	}
	return env
}

// Lookup 查找变量，区分未设置与空值
func (e Env) Lookup(name string) (string, bool) {
	v, ok := e[name]
	return v, ok
}

// Binding 描述一条规则的取值来源，Env 与 Template 二选一
type Binding struct {
	Token    string
	Env      string
	Template string
}

func (b Binding) String() string {
	if b.Template != "" {
		return b.Token + "=" + b.Template
	}
	return b.Token + "=" + b.Env
}

// ParseBinding 解析 "TOKEN=ENV" 或 "TOKEN={{模板}}" 形式的绑定
func ParseBinding(s string) (Binding, error) {
	token, src, ok := strings.Cut(strings.TrimSpace(s), "=")
	token = strings.TrimSpace(token)
	src = strings.TrimSpace(src)
	if !ok || token == "" || src == "" {
		return Binding{}, fmt.Errorf("%w: %q, want TOKEN=ENV or TOKEN={{template}}", ErrInvalidBinding, s)
	}

	if strings.Contains(src, "{{") {
		return Binding{Token: token, Template: src}, nil
	}
	return Binding{Token: token, Env: src}, nil
}

// ParseBindings 按顺序解析多条绑定
func ParseBindings(rules []string) ([]Binding, error) {
	bindings := make([]Binding, 0, len(rules))
	for _, s := range rules {
		b, err := ParseBinding(s)
		if err != nil {
			return nil, err
		}
		bindings = append(bindings, b)
	}
	return bindings, nil
}

// Resolve 按顺序解析所有绑定，返回可直接交给 rewrite 的规则。
//
// 任一变量缺失时立即返回 [*MissingEnvError]，不返回部分结果。
func Resolve(env Env, bindings []Binding) ([]rewrite.Rule, error) {
	rules := make([]rewrite.Rule, 0, len(bindings))
	for _, b := range bindings {
		value, err := resolveOne(env, b)
		if err != nil {
			return nil, err
		}
		rules = append(rules, rewrite.Rule{Token: b.Token, Value: value})
	}
	return rules, nil
}

func resolveOne(env Env, b Binding) (string, error) {
	if b.Template != "" {
		return expand(env, b.Token, b.Template)
	}

	value, ok := env.Lookup(b.Env)
	if !ok {
		return "", &MissingEnvError{Name: b.Env, Token: b.Token}
	}
	return value, nil
}
