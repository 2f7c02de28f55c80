package server

import (
	"math/rand/v2"
)

// 昵称词库
var (
	adjectives = []string{
		"Brave", "Clever", "Happy", "Mystic", "Cool",
		"Elegant", "Cute", "Mighty", "Calm", "Lively",
		"Witty", "Dashing", "Gentle", "Bold", "Chill",
		"Shiny", "Charming", "Sassy", "Dreamy", "Aloof",
	}

	nouns = []string{
		"Chick", "Panda", "Tiger", "Lion", "Monkey",
		"Rabbit", "Fox", "Dolphin", "Penguin", "Koala",
		"Corgi", "Shiba", "Ragdoll", "Chinchilla", "Hamster",
		"Hedgehog", "Squirrel", "Raccoon", "Otter", "Alpaca",
	}
)

// GenerateNickname 生成随机昵称
func GenerateNickname() string {
	adj := adjectives[rand.IntN(len(adjectives))]
	noun := nouns[rand.IntN(len(nouns))]
	return adj + " " + noun
}
