package envres

import (
	"bytes"
	"fmt"
	"text/template"
	"text/template/parse"
)

// expand 针对给定 Env 渲染取值模板。
//
// 直接出现在输出中的 {{.VAR}} / {{env "VAR"}} 为必需变量，渲染前检查，
// 缺失时返回 [*MissingEnvError]。作为 default / coalesce 参数或位于其之前的管道、
// 以及 if / with / range 条件中的引用不是必需的，缺失时按空字符串处理。
func expand(env Env, token, text string) (string, error) {
	funcs := template.FuncMap{
		"env": func(name string, defaultVal ...string) string {
			if v, ok := env.Lookup(name); ok {
				return v
			}
			if len(defaultVal) > 0 {
				return defaultVal[0]
			}
			return ""
		},
		"default":  defaultFunc,
		"coalesce": coalesceFunc,
	}

	tmpl, err := template.New(token).Funcs(funcs).Option("missingkey=zero").Parse(text)
	if err != nil {
		return "", fmt.Errorf("%w: token %s: %w", ErrInvalidBinding, token, err)
	}

	for _, name := range requiredVars(tmpl.Tree.Root) {
		if _, ok := env.Lookup(name); !ok {
			return "", &MissingEnvError{Name: name, Token: token}
		}
	}

	var buf bytes.Buffer
	if err := tmpl.Execute(&buf, map[string]string(env)); err != nil {
		return "", fmt.Errorf("token %s: %w", token, err)
	}

	return buf.String(), nil
}

// requiredVars 按出现顺序收集未被 default / coalesce 保护的变量名。
// env 的变量名不是字符串字面量时无法静态判断，按可选处理。
func requiredVars(root *parse.ListNode) []string {
	var names []string

	var walk func(node parse.Node)
	walkBranch := func(b *parse.BranchNode) {
		names = append(names, pipeVars(b.Pipe, true)...)
		walk(b.List)
		walk(b.ElseList)
	}
	walk = func(node parse.Node) {
		switch n := node.(type) {
		case *parse.ListNode:
			if n == nil {
				return
			}
			for _, child := range n.Nodes {
				walk(child)
			}
		case *parse.ActionNode:
			names = append(names, pipeVars(n.Pipe, false)...)
		case *parse.IfNode:
			walkBranch(&n.BranchNode)
		case *parse.WithNode:
			walkBranch(&n.BranchNode)
		case *parse.RangeNode:
			walkBranch(&n.BranchNode)
		}
	}
	walk(root)

	return names
}

func pipeVars(pipe *parse.PipeNode, guarded bool) []string {
	if pipe == nil {
		return nil
	}

	// 管道中最后一个 default / coalesce 之前的命令都受其保护
	lastGuard := -1
	for i, cmd := range pipe.Cmds {
		if isGuard(cmd) {
			lastGuard = i
		}
	}

	var names []string
	for i, cmd := range pipe.Cmds {
		names = append(names, cmdVars(cmd, guarded || i <= lastGuard)...)
	}
	return names
}

func cmdVars(cmd *parse.CommandNode, guarded bool) []string {
	var names []string
	if name, ok := requiredEnvName(cmd); ok && !guarded {
		names = append(names, name)
	}

	for _, arg := range cmd.Args {
		switch a := arg.(type) {
		case *parse.FieldNode:
			if !guarded {
				names = append(names, a.Ident[0])
			}
		case *parse.PipeNode:
			names = append(names, pipeVars(a, guarded)...)
		}
	}
	return names
}

// isGuard 命令是否为 default 或 coalesce 调用
func isGuard(cmd *parse.CommandNode) bool {
	if len(cmd.Args) == 0 {
		return false
	}
	id, ok := cmd.Args[0].(*parse.IdentifierNode)
	return ok && (id.Ident == "default" || id.Ident == "coalesce")
}

// requiredEnvName 识别不带默认值的 {{env "VAR"}}
func requiredEnvName(cmd *parse.CommandNode) (string, bool) {
	if len(cmd.Args) != 2 {
		return "", false
	}
	id, ok := cmd.Args[0].(*parse.IdentifierNode)
	if !ok || id.Ident != "env" {
		return "", false
	}
	s, ok := cmd.Args[1].(*parse.StringNode)
	if !ok {
		return "", false
	}
	return s.Text, true
}

// defaultFunc 参数顺序与 Sprig 一致：default(默认值, 实际值)
func defaultFunc(defaultVal, value any) any {
	if value == nil {
		return defaultVal
	}
	if s, ok := value.(string); ok && s == "" {
		return defaultVal
	}
	return value
}

// coalesceFunc 返回第一个非空值，全部为空时返回空字符串
func coalesceFunc(values ...any) any {
	for _, v := range values {
		if v == nil {
			continue
		}
		if s, ok := v.(string); ok && s == "" {
			continue
		}
		return v
	}
	return ""
}
