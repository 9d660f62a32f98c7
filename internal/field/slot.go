package field

import "github.com/tangzhangming/fieldsynth/internal/jtype"

// SlotOf 返回第 nth 个参数所在的局部变量槽位。
// 非静态上下文中接收者占用槽位 0；long/double 参数各占两个槽位。
func SlotOf(nth int, params []jtype.Type, isStatic bool) int {
	slot := 1
	if isStatic {
		slot = 0
	}
	for i := 0; i < nth && i < len(params); i++ {
		if params[i].IsWide() {
			slot += 2
		} else {
			slot++
		}
	}
	return slot
}
