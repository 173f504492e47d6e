package rewrite

import (
	"os"
	"path/filepath"
)

// Option 改写选项
type Option func(*options)

type options struct {
	atomic bool
	perm   os.FileMode
}

func newOptions(opts []Option) *options {
	o := &options{
		atomic: true,
		perm:   0o644,
	}
	for _, opt := range opts {
		opt(o)
	}
	return o
}

// WithAtomic 设置是否通过临时文件 + rename 写入目标文件，默认 true。
//
// 原子写入要求目标所在目录可写 (临时文件创建在该目录)，目标文件的属主
// 会变为当前用户；目标为符号链接时写入链接指向的文件，链接本身保留。
// 只对目标文件有写权限时需要关闭。
//
// 关闭后直接截断写入，写入中途失败可能留下不完整的目标文件。
func WithAtomic(atomic bool) Option {
	return func(o *options) { o.atomic = atomic }
}

// WithPerm 设置新建目标文件的权限。
// 目标文件已存在时沿用其权限，否则沿用源文件权限，二者都不可用时才使用此值。
func WithPerm(perm os.FileMode) Option {
	return func(o *options) { o.perm = perm }
}

// writeAtomic 在目标目录创建临时文件，写入完成后 rename 到目标路径。
func writeAtomic(dest string, data []byte, perm os.FileMode) (err error) {
	if target, evalErr := filepath.EvalSymlinks(dest); evalErr == nil {
		dest = target
	}

	tmp, err := os.CreateTemp(filepath.Dir(dest), "."+filepath.Base(dest)+".*.tmp")
	if err != nil {
		return err
	}
	tmpName := tmp.Name()
	defer func() {
		if err != nil {
			_ = tmp.Close()
			_ = os.Remove(tmpName)
		}
	}()

	if _, err = tmp.Write(data); err != nil {
		return err
	}
	if err = tmp.Sync(); err != nil {
		return err
	}
	if err = tmp.Chmod(perm); err != nil {
		return err
	}
	if err = tmp.Close(); err != nil {
		return err
	}

	return os.Rename(tmpName, dest)
}
