package statement

import (
	"errors"

	"github.com/etnz/tradelog"
)

// Reader decrypts and parses statements.
type Reader struct {
	Extractor tradelog.TextExtractor
	Parser    Parser
}

// ReadStatement implements tradelog.StatementReader.
func (r *Reader) ReadStatement(doc tradelog.Document, password string) (tradelog.StatementResult, error) {
	pages, err := r.Extractor.ExtractText(doc.Data, password)
	if err != nil {
		reason := "cannot extract text"
		if errors.Is(err, tradelog.ErrBadPassword) {
			reason = "cannot decrypt"
		}
		return tradelog.StatementResult{}, &tradelog.ParseError{Statement: doc.Name, Reason: reason, Err: err}
	}
	return r.Parser.Parse(doc.Name, pages)
}
