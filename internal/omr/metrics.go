package omr

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var answerSymbolsTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Name: "gabarito_answer_symbols_total",
		Help: "Answer symbols emitted by the answer reader",
	},
	[]string{"kind"}, // kind: choice, blank, ambiguous
)

func observeAnswers(answers []Answer) {
	for _, a := range answers {
		switch a.Symbol {
		case Blank:
			answerSymbolsTotal.WithLabelValues("blank").Inc()
		case Ambiguous:
			answerSymbolsTotal.WithLabelValues("ambiguous").Inc()
		default:
			answerSymbolsTotal.WithLabelValues("choice").Inc()
		}
	}
}
