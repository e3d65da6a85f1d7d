// Package cellhandler 维护存储介质类型到 CellHandler 的注册表。
//
// 元件实现者需要：
//   1. 在 internal/cells/<name>/ 目录下实现 Handler 接口；
//   2. 在 init() 中通过 MustRegister 注册一个或多个介质类型键；
//   3. 保证 Inventory 在拒绝某个通道时返回 nil，而不是返回错误。
//
// 驱动器通过 Resolver 接口使用注册表，测试可以注入自己的实现。
package cellhandler
