package deck

import (
	_ "embed"
	"fmt"

	"gopkg.in/yaml.v3"

	"github.com/threadspeaker/scout-with-friends/internal/game/card"
)

//go:embed rules.yaml
var defaultRulesYAML []byte

// FilterRule 某个玩家人数下需要移除的牌
type FilterRule struct {
	Players     int      `yaml:"players"`
	RemoveFaces []int    `yaml:"remove_faces"` // 含任一牌面值的牌全部移除
	RemovePairs [][2]int `yaml:"remove_pairs"` // 移除指定牌面对（忽略朝向）
}

// RuleTable 玩家人数 -> 过滤规则
type RuleTable map[int]FilterRule

// ParseRules 解析 YAML 规则表
func ParseRules(data []byte) (RuleTable, error) {
	var doc struct {
		Rules []FilterRule `yaml:"rules"`
	}
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("解析牌堆规则失败: %w", err)
	}

	table := make(RuleTable, len(doc.Rules))
	for _, r := range doc.Rules {
		if r.Players <= 0 {
			return nil, fmt.Errorf("无效的玩家人数: %d", r.Players)
		}
		if _, dup := table[r.Players]; dup {
			return nil, fmt.Errorf("玩家人数 %d 的规则重复", r.Players)
		}
		for _, f := range r.RemoveFaces {
			if f < card.MinFace || f > card.MaxFace {
				return nil, fmt.Errorf("规则牌面超出范围: %d", f)
			}
		}
		for _, p := range r.RemovePairs {
			if _, err := card.New(p[0], p[1]); err != nil {
				return nil, fmt.Errorf("规则牌面对无效: %w", err)
			}
		}
		table[r.Players] = r
	}
	return table, nil
}

// DefaultRules 内置规则表
func DefaultRules() RuleTable {
	table, err := ParseRules(defaultRulesYAML)
	if err != nil {
		panic(err)
	}
	return table
}

// removes 判断某张牌是否被规则移除
func (r FilterRule) removes(c card.Card) bool {
	for _, f := range r.RemoveFaces {
		if c.HasFace(f) {
			return true
		}
	}
	for _, p := range r.RemovePairs {
		if c.SameFaces(card.Card{Primary: p[0], Secondary: p[1]}) {
			return true
		}
	}
	return false
}

// Apply 按人数过滤牌堆，没有规则时原样返回
func (t RuleTable) Apply(deck []card.Card, playerCount int) []card.Card {
	rule, ok := t[playerCount]
	if !ok {
		return deck
	}
	kept := deck[:0:0]
	for _, c := range deck {
		if !rule.removes(c) {
			kept = append(kept, c)
		}
	}
	return kept
}
