// Package testcorpus writes small feature-file corpora for tests.
//
// The toy corpus has five word slots, two phrases, one sentence and two
// clauses:
//
//	node  type      slots   features
//	1-5   word      itself  word, trailer, freq (1, 3, 4)
//	6     phrase    1-2     function=Subj
//	7     phrase    3-5     function=Pred
//	8     sentence  1-5     number=1
//	9     clause    1-5     number=1
//	10    clause    3-5     number=2
//
// Edges: mother 7->6 and 10->9 (no values); crossref 1->3 (0), 2->4 (no
// value), 6->7 (3), valued int.
package testcorpus

import (
	"os"
	"path/filepath"
)

// Toy maps feature file names to their content.
var Toy = map[string]string{
	"otype.tf":    "@node\n@valueType=str\n\n1-5\tword\n6-7\tphrase\n8\tsentence\n9-10\tclause\n",
	"oslots.tf":   "@edge\n\n6\t1-2\n7\t3-5\n8\t1-5\n9\t1-5\n10\t3-5\n",
	"word.tf":     "@node\n@valueType=str\n\nhello\nbig\nworld\nsays\nhi\n",
	"trailer.tf":  "@node\n@valueType=str\n\n \n \n, \n \n.\n",
	"freq.tf":     "@node\n@valueType=int\n\n0\n\n2\n5\n",
	"function.tf": "@node\n@valueType=str\n\n6\tSubj\nPred\n",
	"number.tf":   "@node\n@valueType=int\n\n8\t1\n1\n2\n",
	"mother.tf":   "@edge\n\n7\t6\n10\t9\n",
	"crossref.tf": "@edge\n@edgeValues\n@valueType=int\n\n1\t3\t0\n2\t4\t\n6\t7\t3\n",

	"otext.tf": "@config\n" +
		"@sectionTypes=sentence,clause\n" +
		"@sectionFeatures=number,number\n" +
		"@structureTypes=sentence\n" +
		"@structureFeatures=number\n" +
		"@fmt:text-orig-full={word}{trailer}\n" +
		"@fmt:lex-trans-plain={lemma/word} \n",
}

// Write writes the toy corpus into dir.
func Write(dir string) error {
	return WriteFiles(dir, Toy)
}

// WriteFiles writes feature files into dir, creating it if needed.
func WriteFiles(dir string, files map[string]string) error {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return err
	}
	for name, content := range files {
		if err := os.WriteFile(filepath.Join(dir, name), []byte(content), 0o600); err != nil {
			return err
		}
	}
	return nil
}

// With returns a copy of Toy with files added, replaced or (for an empty
// content) removed.
func With(changes map[string]string) map[string]string {
	out := make(map[string]string, len(Toy))
	for k, v := range Toy {
		out[k] = v
	}
	for k, v := range changes {
		if v == "" {
			delete(out, k)
			continue
		}
		out[k] = v
	}
	return out
}
