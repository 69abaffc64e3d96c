package filter

import (
	"github.com/YouSangSon/reports-service/internal/pkg/errors"
	"github.com/YouSangSon/reports-service/internal/pkg/query"
	"go.mongodb.org/mongo-driver/mongo"
)

var authSourceRecipes = []query.Recipe{
	query.NewRecipe("auth_source.username", []string{query.OpEq}, []string{"username"}),
	query.NewRecipe("auth_source.email", []string{query.OpEq}, []string{"email"}),
}

// QueryByAuthSource는 인증 소스의 사용자 이름 또는 이메일로 사용자를 찾는 필터입니다
type QueryByAuthSource struct {
	Username string
	Email    string
}

// Attribute는 query.Source를 구현합니다
func (q *QueryByAuthSource) Attribute(name string) interface{} {
	switch name {
	case "username":
		return nonEmpty(q.Username)
	case "email":
		return nonEmpty(q.Email)
	}
	return nil
}

// Validate는 최소 하나의 조건이 있는지 확인합니다. 조건이 없으면 전체 사용자와 일치하게 됩니다.
func (q *QueryByAuthSource) Validate() error {
	if q.Username == "" && q.Email == "" {
		return errors.Validation("username or email is required")
	}
	return nil
}

func (q *QueryByAuthSource) plan() query.Plan {
	return query.Plan{
		Source:  q,
		Recipes: authSourceRecipes,
		Window:  &query.Window{Skip: 0, Limit: 1},
	}
}

// Pipeline은 조회 pipeline을 반환합니다
func (q *QueryByAuthSource) Pipeline() mongo.Pipeline { return q.plan().Pipeline() }

// CountPipeline은 count pipeline을 반환합니다
func (q *QueryByAuthSource) CountPipeline() mongo.Pipeline { return q.plan().CountPipeline() }
