package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"os/signal"

	"github.com/seitarof/sc2xml/internal/cli"
	"github.com/seitarof/sc2xml/internal/generator"
	"github.com/seitarof/sc2xml/internal/matcher"
	"github.com/seitarof/sc2xml/internal/parser"
	"github.com/seitarof/sc2xml/internal/preprocess"
	"github.com/seitarof/sc2xml/internal/resolver"
)

var version = "dev"

func main() {
	cfg, err := cli.ParseArgs(os.Args[1:])
	if err != nil {
		log.Fatal(err)
	}
	if cfg.ShowVersion {
		fmt.Println(version)
		return
	}

	pp, err := preprocess.New(cfg.Preprocessor, cfg.PreprocessTimeout)
	if err != nil {
		log.Fatal(err)
	}
	p := parser.New()
	fm := matcher.NewFieldMatcher()
	r := resolver.New(resolver.DefaultRules()...)
	f := generator.NewGoimportsFormatter()
	w := generator.NewFileWriter()
	g := generator.New(f, w)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	runner := cli.NewRunner(p, pp, fm, r, g)
	if err := runner.Run(ctx, cfg); err != nil {
		stop()
		log.Fatal(err)
	}
}
