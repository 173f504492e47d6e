// Package envres 在调用边界解析替换规则的取值。
//
// 环境变量只在这里读取，rewrite 包只接收已解析好的 [rewrite.Rule]，
// 因此改写逻辑可以脱离进程环境独立测试。
//
// # 绑定语法
//
//   - TOKEN=ENV_NAME       取环境变量 ENV_NAME 的值，未设置时报错
//   - TOKEN={{ 模板 }}      按模板计算取值，见下文
//
// 模板语法参考 Taskfile / Sprig：
//   - {{.VAR}}                          直接访问变量，未设置时报错
//   - {{env "VAR"}}                     同上
//   - {{env "VAR" "fallback"}}          未设置时使用默认值
//   - {{.VAR | default "x"}}            未设置或为空时使用默认值
//   - {{env "VAR" | default "x"}}       同上
//   - {{coalesce .A .B "x"}}            返回第一个非空值，未设置的变量视为空
//   - {{if .VAR}}...{{end}}             条件中的变量可以未设置
//
// 作为 default / coalesce 参数、位于其之前的管道或条件中的变量是可选的，
// 其余引用在渲染前检查。
//
// 缺失的变量统一返回 [*MissingEnvError]，可用 errors.Is(err, [ErrMissingEnv]) 判断。
package envres
