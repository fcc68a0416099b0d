package list

import (
	"net/http"

	"github.com/go-chi/render"
)

type BranchLister interface {
	Branches() ([]string, string)
}

type Response struct {
	Branches      []string `json:"branches"`
	DefaultBranch string   `json:"default_branch"`
}

func List(branches BranchLister) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		all, def := branches.Branches()
		render.JSON(w, r, Response{Branches: all, DefaultBranch: def})
	}
}
