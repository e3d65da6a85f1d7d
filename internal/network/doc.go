// Package network 是存储宿主所在的网格：判定宿主是否激活、组合所有宿主的处理器列表、
// 汇总待机功耗，并按优先级路由插入/提取请求。
//
// 所有宿主的修改都应在 Grid 的所有者循环中执行（Run + Do），事件以消息形式投递给宿主。
// 每条命令执行完毕后，待同步的状态字会发布到 StatusFeed，变更的优先级会写入持久化存储。
package network
