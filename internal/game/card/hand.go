package card

import (
	"slices"
)

// Hand 玩家手牌，顺序即玩家看到的位置
type Hand []Card

// Flip 将整手牌全部翻面（原地修改），连续调用两次恢复原状
func (h Hand) Flip() {
	for i := range h {
		h[i] = h[i].Flipped()
	}
}

// Clone 复制手牌，避免投影与内部状态共享底层数组
func (h Hand) Clone() Hand {
	if h == nil {
		return Hand{}
	}
	return slices.Clone(h)
}
