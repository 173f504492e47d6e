// Package rewrite 提供配置模板的字面量占位符替换。
//
// # 语义
//
// 规则 [Rule] 是有序的 (Token, Value) 对。[Apply] 按规则顺序单遍处理文本：
//   - 每条规则替换当前文本中所有互不重叠的 Token 字面量
//   - 规则 i 引入的文本不会被规则 i 再次扫描，但对后续规则 j>i 可见
//   - 不存在的 Token 不产生任何变化
//
// 本包不读取环境变量，Value 必须由调用方预先解析，参见 envres 包。
//
// # 文件改写
//
// [File] 读取源文件、应用规则并写入目标文件 (可与源文件相同)：
//
//	res, err := rewrite.File("app.properties.tmpl", "app.properties", []rewrite.Rule{
//	    {Token: "AWS_REGION", Value: "us-west-2"},
//	    {Token: "STREAM_NAME", Value: "orders"},
//	})
//
// 默认通过同目录临时文件 + rename 写入，使用 [WithAtomic](false) 可退回直接覆盖写
// (目标目录不可写时需要)。
//
// # 错误
//
//   - [ErrMissingInput] 源文件不存在或不可读，不会写入任何文件
//   - [ErrWrite] 目标文件写入失败
//   - [ErrEmptyToken] 规则的 Token 为空
package rewrite
