package card

import (
	"fmt"
)

const (
	// MinFace 最小牌面值
	MinFace = 1
	// MaxFace 最大牌面值
	MaxFace = 10
)

// Card 一张双面牌，Primary 为当前朝上的一面
type Card struct {
	Primary   int `json:"primary"`
	Secondary int `json:"secondary"`
}

// New 创建一张牌，校验牌面范围
func New(primary, secondary int) (Card, error) {
	if primary < MinFace || primary > MaxFace || secondary < MinFace || secondary > MaxFace {
		return Card{}, fmt.Errorf("牌面超出范围 [%d,%d]: (%d,%d)", MinFace, MaxFace, primary, secondary)
	}
	if primary == secondary {
		return Card{}, fmt.Errorf("两面牌值不能相同: %d", primary)
	}
	return Card{Primary: primary, Secondary: secondary}, nil
}

// Flipped 返回翻面后的牌，原牌不变
func (c Card) Flipped() Card {
	return Card{Primary: c.Secondary, Secondary: c.Primary}
}

// Faces 返回与朝向无关的牌面对（小值在前）
func (c Card) Faces() (low, high int) {
	if c.Primary < c.Secondary {
		return c.Primary, c.Secondary
	}
	return c.Secondary, c.Primary
}

// HasFace 是否包含某个牌面值
func (c Card) HasFace(v int) bool {
	return c.Primary == v || c.Secondary == v
}

// SameFaces 两张牌是否为同一张物理牌
func (c Card) SameFaces(o Card) bool {
	l1, h1 := c.Faces()
	l2, h2 := o.Faces()
	return l1 == l2 && h1 == h2
}

func (c Card) String() string {
	return fmt.Sprintf("%d/%d", c.Primary, c.Secondary)
}
