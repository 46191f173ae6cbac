package tfgraph_test

import (
	"context"
	"fmt"
	"log"
	"os"
	"path/filepath"

	"github.com/hupe1980/tfgraph"
	"github.com/hupe1980/tfgraph/internal/testcorpus"
)

func exampleCorpus() (string, func()) {
	dir, err := os.MkdirTemp("", "tfgraph-example")
	if err != nil {
		log.Fatal(err)
	}
	src := filepath.Join(dir, "tf")
	if err := testcorpus.Write(src); err != nil {
		log.Fatal(err)
	}
	return src, func() { _ = os.RemoveAll(dir) }
}

func ExampleLoad() {
	src, cleanup := exampleCorpus()
	defer cleanup()

	ctx := context.Background()
	c, err := tfgraph.Load(ctx, []string{src})
	if err != nil {
		log.Fatal(err)
	}
	defer c.Close()

	fmt.Println(c.Source(), c.MaxSlot(), c.MaxNode())
	// Output: compiled 5 10
}

func ExampleCorpus_Search() {
	src, cleanup := exampleCorpus()
	defer cleanup()

	ctx := context.Background()
	c, err := tfgraph.Load(ctx, []string{src}, tfgraph.WithoutCache())
	if err != nil {
		log.Fatal(err)
	}
	defer c.Close()

	tuples, err := c.Search(ctx, "clause\n/without/\n  phrase function=Subj\n/-/", 0)
	if err != nil {
		log.Fatal(err)
	}
	fmt.Println(tuples)
	// Output: [[10]]
}

func ExampleText_Render() {
	src, cleanup := exampleCorpus()
	defer cleanup()

	c, err := tfgraph.Load(context.Background(), []string{src}, tfgraph.WithoutCache())
	if err != nil {
		log.Fatal(err)
	}
	defer c.Close()

	text, err := c.Text()
	if err != nil {
		log.Fatal(err)
	}
	s, err := text.Render(c.Otype().S("sentence"), "")
	if err != nil {
		log.Fatal(err)
	}
	fmt.Println(s)
	// Output: hello big world, says hi.
}
