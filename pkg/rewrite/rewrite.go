package rewrite

import (
	"errors"
	"fmt"
	"os"
	"strings"
)

var (
	// ErrEmptyToken 规则 Token 为空
	ErrEmptyToken = errors.New("empty token")

	// ErrMissingInput 源文件不存在或不可读
	ErrMissingInput = errors.New("missing input file")

	// ErrWrite 目标文件写入失败
	ErrWrite = errors.New("write failure")
)

// Rule 一条替换规则
type Rule struct {
	Token string // 字面量占位符
	Value string // 替换值，原样写入
}

func (r Rule) String() string { return r.Token + "=" + r.Value }

// Result 一次改写的结果
type Result struct {
	Source   string
	Dest     string
	Replaced []int // 按规则顺序记录每条规则的替换次数
	Bytes    int   // 输出文档字节数
}

// Total 返回所有规则的替换总次数
func (r *Result) Total() int {
	n := 0
	for _, c := range r.Replaced {
		n += c
	}
	return n
}

// Validate 校验规则列表，所有 Token 必须非空。
func Validate(rules []Rule) error {
	for i, r := range rules {
		if r.Token == "" {
			return fmt.Errorf("rule %d: %w", i, ErrEmptyToken)
		}
	}
	return nil
}

// Apply 按顺序将规则应用到文档，返回替换后的文本。
//
// 调用方需保证规则已通过 [Validate]，空 Token 会被跳过。
func Apply(doc string, rules []Rule) string {
	out, _ := ApplyCount(doc, rules)
	return out
}

// ApplyCount 与 [Apply] 相同，额外返回每条规则的替换次数。
func ApplyCount(doc string, rules []Rule) (string, []int) {
	counts := make([]int, len(rules))
	for i, r := range rules {
		if r.Token == "" {
			continue
		}
		n := strings.Count(doc, r.Token)
		if n == 0 {
			continue
		}
		counts[i] = n
		doc = strings.ReplaceAll(doc, r.Token, r.Value)
	}
	return doc, counts
}

// Render 读取源文件并应用规则，不写入任何文件。
func Render(source string, rules []Rule) (string, *Result, error) {
	if err := Validate(rules); err != nil {
		return "", nil, err
	}

	data, err := os.ReadFile(source)
	if err != nil {
		return "", nil, fmt.Errorf("%w: %w", ErrMissingInput, err)
	}

	out, counts := ApplyCount(string(data), rules)
	return out, &Result{
		Source:   source,
		Replaced: counts,
		Bytes:    len(out),
	}, nil
}

// File 读取 source，按顺序应用规则，并将结果写入 dest (覆盖已有内容)。
//
// dest 为空时写回 source。源文件读取失败时不会写入任何文件。
func File(source, dest string, rules []Rule, opts ...Option) (*Result, error) {
	o := newOptions(opts)
	if dest == "" {
		dest = source
	}

	out, res, err := Render(source, rules)
	if err != nil {
		return nil, err
	}
	res.Dest = dest

	perm := o.perm
	if fi, statErr := os.Stat(dest); statErr == nil {
		perm = fi.Mode().Perm()
	} else if fi, statErr := os.Stat(source); statErr == nil {
		perm = fi.Mode().Perm()
	}

	if o.atomic {
		err = writeAtomic(dest, []byte(out), perm)
	} else {
		err = os.WriteFile(dest, []byte(out), perm)
	}
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrWrite, err)
	}

	return res, nil
}
