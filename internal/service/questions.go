package service

import (
	"math/rand"
	"strings"
)

// Question pools by theme. Themes are free text; unknown themes fall back to
// the general pool.
var questionPools = map[string][]string{
	"comida": {
		"Qual é a melhor pizza?",
		"Qual comida não pode faltar num churrasco?",
		"Qual é o melhor sabor de sorvete?",
		"Qual lanche você pede às 3 da manhã?",
		"Qual fruta é a mais superestimada?",
		"O que não pode faltar no café da manhã?",
		"Qual é o melhor acompanhamento para arroz e feijão?",
		"Qual doce de festa de aniversário é o melhor?",
	},
	"filmes": {
		"Qual é o melhor filme de todos os tempos?",
		"Qual vilão de filme é o mais assustador?",
		"Qual filme todo mundo já viu?",
		"Qual é a melhor animação?",
		"Qual ator faria o melhor super-herói?",
		"Qual filme é perfeito para uma sexta à noite?",
		"Qual sequência é melhor que o original?",
	},
	"geral": {
		"Qual é o melhor dia da semana?",
		"Qual superpoder todo mundo gostaria de ter?",
		"Qual é o animal de estimação ideal?",
		"Qual aplicativo você abre primeiro de manhã?",
		"Qual é o melhor lugar para férias?",
		"Qual esporte é o mais divertido de assistir?",
		"Qual é a pior tarefa doméstica?",
		"Qual estação do ano é a melhor?",
		"Qual cor combina com todo mundo?",
		"Qual é o melhor presente de aniversário?",
	},
}

// BuildQuestionQueue draws count questions for a theme by shuffling the pool
// and repeating it, reshuffled, until the count is reached. A question can
// only repeat once the pool has been exhausted.
func BuildQuestionQueue(theme string, count int) []string {
	pool := questionPools[strings.ToLower(strings.TrimSpace(theme))]
	if len(pool) == 0 {
		pool = questionPools["geral"]
	}

	queue := make([]string, 0, count)
	for len(queue) < count {
		shuffled := make([]string, len(pool))
		copy(shuffled, pool)
		rand.Shuffle(len(shuffled), func(i, j int) {
			shuffled[i], shuffled[j] = shuffled[j], shuffled[i]
		})
		queue = append(queue, shuffled...)
	}
	return queue[:count]
}
