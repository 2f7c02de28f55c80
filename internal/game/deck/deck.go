// Package deck 负责构建、过滤、洗牌和分发双面牌
package deck

import (
	"errors"
	"math/rand/v2"
	"sync"

	"github.com/threadspeaker/scout-with-friends/internal/game/card"
)

// FullDeckSize 未过滤时的牌数：1..10 中任取两个不同值
const FullDeckSize = card.MaxFace * (card.MaxFace - 1) / 2

// ErrNoPlayers 发牌人数无效
var ErrNoPlayers = errors.New("玩家人数必须大于 0")

// Engine 牌堆引擎，内部随机源由互斥锁保护，可被多个会话并发使用
type Engine struct {
	rules RuleTable

	mu  sync.Mutex
	rng *rand.Rand
}

// NewEngine 使用指定种子创建引擎（测试用于复现结果）
func NewEngine(seed1, seed2 uint64) *Engine {
	return &Engine{
		rules: DefaultRules(),
		rng:   rand.New(rand.NewPCG(seed1, seed2)),
	}
}

// NewRandomEngine 使用随机种子创建引擎
func NewRandomEngine() *Engine {
	return NewEngine(rand.Uint64(), rand.Uint64())
}

// WithRules 替换过滤规则表
func (e *Engine) WithRules(rules RuleTable) *Engine {
	e.rules = rules
	return e
}

// NewDeck 生成 45 张牌，每张牌的朝向独立随机
func (e *Engine) NewDeck() []card.Card {
	e.mu.Lock()
	defer e.mu.Unlock()

	deck := make([]card.Card, 0, FullDeckSize)
	for i := card.MinFace; i <= card.MaxFace; i++ {
		for j := i + 1; j <= card.MaxFace; j++ {
			c := card.Card{Primary: i, Secondary: j}
			if e.rng.IntN(2) == 1 {
				c = c.Flipped()
			}
			deck = append(deck, c)
		}
	}
	return deck
}

// BuildDeck 生成、按人数过滤并洗好的牌堆
func (e *Engine) BuildDeck(playerCount int) ([]card.Card, error) {
	if playerCount <= 0 {
		return nil, ErrNoPlayers
	}
	deck := e.rules.Apply(e.NewDeck(), playerCount)
	Shuffle(e, deck)
	return deck, nil
}

// Deal 按顺序将连续的牌块发给每位玩家，余下的牌不发出
func Deal(deck []card.Card, playerCount int) (hands []card.Hand, remainder []card.Card, err error) {
	if playerCount <= 0 {
		return nil, nil, ErrNoPlayers
	}
	perPlayer := len(deck) / playerCount
	hands = make([]card.Hand, playerCount)
	for i := range hands {
		hands[i] = card.Hand(deck[i*perPlayer : (i+1)*perPlayer]).Clone()
	}
	remainder = append([]card.Card(nil), deck[perPlayer*playerCount:]...)
	return hands, remainder, nil
}

// Shuffle 原地均匀洗牌（Fisher-Yates）
func Shuffle[T any](e *Engine, items []T) {
	e.mu.Lock()
	defer e.mu.Unlock()

	e.rng.Shuffle(len(items), func(i, j int) {
		items[i], items[j] = items[j], items[i]
	})
}
