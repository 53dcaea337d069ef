package main

import (
	"github.com/posener/complete/v2"
	"github.com/posener/complete/v2/predict"
)

var windowPredictor = predict.Set{"7d", "1m", "3m", "ytd", "1y", "all"}

// completion describes the command line for shell completion. Install it
// with COMP_INSTALL=1 portfolio.
func completion(name string) *complete.Command {
	return &complete.Command{
		Flags: map[string]complete.Predictor{
			"db":       predict.Files("*.db"),
			"plain":    predict.Nothing,
			"currency": predict.Set{"USD", "EUR", "GBP", "JPY", "CHF"},
		},
		Sub: map[string]*complete.Command{
			"positions": {},
			"refresh":   {},
			"timeline": {
				Flags: map[string]complete.Predictor{"w": windowPredictor},
			},
			"report": {
				Flags: map[string]complete.Predictor{
					"w":    windowPredictor,
					"html": predict.Nothing,
				},
			},
			"add": {
				Flags: map[string]complete.Predictor{
					"t":     predict.Something,
					"q":     predict.Something,
					"p":     predict.Something,
					"name":  predict.Something,
					"type":  predict.Set{"buy", "sell"},
					"asset": predict.Set{"stock", "crypto"},
					"d":     predict.Something,
					"time":  predict.Something,
				},
			},
			"help":     {},
			"commands": {},
			"flags":    {},
		},
	}
}
