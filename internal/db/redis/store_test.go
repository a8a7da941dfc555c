package redis

import (
	"context"
	"errors"
	"strconv"
	"strings"
	"testing"
	"time"

	"github.com/redis/rueidis"
	"github.com/redis/rueidis/mock"
	"go.uber.org/mock/gomock"

	"github.com/kailas-cloud/recodex/internal/db"
	"github.com/kailas-cloud/recodex/internal/domain/search/filter"
	"github.com/kailas-cloud/recodex/internal/domain/search/query"
)

// --- client.go tests ---

func TestPing_Success(t *testing.T) {
	ctrl := gomock.NewController(t)
	c := mock.NewClient(ctrl)

	c.EXPECT().
		Do(gomock.Any(), mock.Match("PING")).
		Return(mock.Result(mock.RedisString("PONG")))

	s := NewStoreForTest(c)
	if err := s.Ping(context.Background()); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}

func TestPing_Error(t *testing.T) {
	ctrl := gomock.NewController(t)
	c := mock.NewClient(ctrl)

	c.EXPECT().
		Do(gomock.Any(), mock.Match("PING")).
		Return(mock.ErrorResult(context.DeadlineExceeded))

	s := NewStoreForTest(c)
	if err := s.Ping(context.Background()); err == nil {
		t.Fatal("expected error")
	}
}

func TestNewStore_RequiresAddrs(t *testing.T) {
	if _, err := NewStore(Config{}); err == nil {
		t.Fatal("expected error for empty addrs")
	}
}

// --- json.go tests ---

func TestWaitForReady_RetriesUntilPing(t *testing.T) {
	ctrl := gomock.NewController(t)
	c := mock.NewClient(ctrl)

	gomock.InOrder(
		c.EXPECT().Do(gomock.Any(), mock.Match("PING")).Return(mock.ErrorResult(errors.New("loading"))),
		c.EXPECT().Do(gomock.Any(), mock.Match("PING")).Return(mock.Result(mock.RedisString("PONG"))),
	)

	s := NewStoreForTest(c)
	if err := s.WaitForReady(context.Background(), 5*time.Second); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}

func TestWaitForReady_TimeoutCarriesLastError(t *testing.T) {
	ctrl := gomock.NewController(t)
	c := mock.NewClient(ctrl)

	c.EXPECT().Do(gomock.Any(), mock.Match("PING")).
		Return(mock.ErrorResult(errors.New("connection refused"))).
		AnyTimes()

	s := NewStoreForTest(c)
	err := s.WaitForReady(context.Background(), 250*time.Millisecond)
	if err == nil {
		t.Fatal("expected timeout error")
	}
	if !errors.Is(err, context.DeadlineExceeded) || !strings.Contains(err.Error(), "connection refused") {
		t.Errorf("err = %v", err)
	}
}

func TestJSONSet_Success(t *testing.T) {
	ctrl := gomock.NewController(t)
	c := mock.NewClient(ctrl)

	c.EXPECT().
		Do(gomock.Any(), mock.MatchFn(func(cmd []string) bool {
			return cmd[0] == "JSON.SET" && cmd[1] == "recodex:product:1" && cmd[2] == "$"
		})).
		Return(mock.Result(mock.RedisString("OK")))

	s := NewStoreForTest(c)
	err := s.JSONSet(context.Background(), "recodex:product:1", "$", []byte(`{"title":"a"}`))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}

func TestJSONSet_Error(t *testing.T) {
	ctrl := gomock.NewController(t)
	c := mock.NewClient(ctrl)

	c.EXPECT().
		Do(gomock.Any(), mock.MatchFn(func(cmd []string) bool {
			return cmd[0] == "JSON.SET"
		})).
		Return(mock.ErrorResult(context.DeadlineExceeded))

	s := NewStoreForTest(c)
	err := s.JSONSet(context.Background(), "k", "$", []byte(`{}`))
	if !isDBError(err) {
		t.Errorf("expected db.Error, got %T", err)
	}
}

func TestJSONSetMulti_Success(t *testing.T) {
	ctrl := gomock.NewController(t)
	c := mock.NewClient(ctrl)

	c.EXPECT().
		DoMulti(gomock.Any(), gomock.Any(), gomock.Any()).
		Return([]rueidis.RedisResult{
			mock.Result(mock.RedisString("OK")),
			mock.Result(mock.RedisString("OK")),
		})

	s := NewStoreForTest(c)
	err := s.JSONSetMulti(context.Background(), []db.JSONSetItem{
		{Key: "k1", Data: []byte(`{}`)},
		{Key: "k2", Path: "$", Data: []byte(`{}`)},
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}

func TestJSONSetMulti_PartialFailure(t *testing.T) {
	ctrl := gomock.NewController(t)
	c := mock.NewClient(ctrl)

	c.EXPECT().
		DoMulti(gomock.Any(), gomock.Any(), gomock.Any()).
		Return([]rueidis.RedisResult{
			mock.Result(mock.RedisString("OK")),
			mock.ErrorResult(context.DeadlineExceeded),
		})

	s := NewStoreForTest(c)
	err := s.JSONSetMulti(context.Background(), []db.JSONSetItem{
		{Key: "k1", Data: []byte(`{}`)},
		{Key: "k2", Data: []byte(`{}`)},
	})
	if !isDBError(err) {
		t.Fatalf("expected db.Error, got %v", err)
	}
	if !strings.Contains(err.Error(), "k2") {
		t.Errorf("error should name the failing key: %v", err)
	}
}

func TestJSONSetMulti_ChunksLargeBatches(t *testing.T) {
	ctrl := gomock.NewController(t)
	c := mock.NewClient(ctrl)

	var sizes []int
	c.EXPECT().
		DoMulti(gomock.Any(), gomock.Any()).
		DoAndReturn(func(_ context.Context, cmds ...rueidis.Completed) []rueidis.RedisResult {
			sizes = append(sizes, len(cmds))
			out := make([]rueidis.RedisResult, len(cmds))
			for i := range out {
				out[i] = mock.Result(mock.RedisString("OK"))
			}
			if len(sizes) == 1 {
				out[3] = mock.ErrorResult(errors.New("OOM"))
			}
			return out
		}).
		Times(2)

	items := make([]db.JSONSetItem, maxPipeline+10)
	for i := range items {
		items[i] = db.JSONSetItem{Key: "p" + strconv.Itoa(i), Data: []byte(`{}`)}
	}

	s := NewStoreForTest(c)
	err := s.JSONSetMulti(context.Background(), items)
	if len(sizes) != 2 || sizes[0] != maxPipeline || sizes[1] != 10 {
		t.Fatalf("chunk sizes = %v", sizes)
	}
	if !isDBError(err) || !strings.Contains(err.Error(), "key p3") {
		t.Fatalf("expected db.Error naming p3, got %v", err)
	}
}

func TestJSONSetMulti_Empty(t *testing.T) {
	s := NewStoreForTest(nil) // client not called
	if err := s.JSONSetMulti(context.Background(), nil); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}

func TestJSONGet_Success(t *testing.T) {
	ctrl := gomock.NewController(t)
	c := mock.NewClient(ctrl)

	c.EXPECT().
		Do(gomock.Any(), mock.MatchFn(func(cmd []string) bool {
			return cmd[0] == "JSON.GET" && cmd[1] == "mykey"
		})).
		Return(mock.Result(mock.RedisString(`{"a":1}`)))

	s := NewStoreForTest(c)
	data, err := s.JSONGet(context.Background(), "mykey", "$")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if string(data) != `{"a":1}` {
		t.Errorf("unexpected data: %s", data)
	}
}

func TestJSONGet_NotFound(t *testing.T) {
	ctrl := gomock.NewController(t)
	c := mock.NewClient(ctrl)

	c.EXPECT().
		Do(gomock.Any(), mock.MatchFn(func(cmd []string) bool {
			return cmd[0] == "JSON.GET"
		})).
		Return(mock.Result(mock.RedisNil()))

	s := NewStoreForTest(c)
	_, err := s.JSONGet(context.Background(), "mykey", "$")
	if !errors.Is(err, db.ErrKeyNotFound) {
		t.Errorf("expected ErrKeyNotFound, got %v", err)
	}
}

func TestJSONGet_Error(t *testing.T) {
	ctrl := gomock.NewController(t)
	c := mock.NewClient(ctrl)

	c.EXPECT().
		Do(gomock.Any(), mock.MatchFn(func(cmd []string) bool {
			return cmd[0] == "JSON.GET"
		})).
		Return(mock.ErrorResult(context.DeadlineExceeded))

	s := NewStoreForTest(c)
	_, err := s.JSONGet(context.Background(), "mykey", "$")
	if err == nil {
		t.Fatal("expected error")
	}
	if errors.Is(err, db.ErrKeyNotFound) {
		t.Error("should not be ErrKeyNotFound for network errors")
	}
}

func TestDel_Success(t *testing.T) {
	ctrl := gomock.NewController(t)
	c := mock.NewClient(ctrl)

	c.EXPECT().
		Do(gomock.Any(), mock.Match("DEL", "mykey")).
		Return(mock.Result(mock.RedisInt64(1)))

	s := NewStoreForTest(c)
	if err := s.Del(context.Background(), "mykey"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}

func TestExists(t *testing.T) {
	for _, tc := range []struct {
		reply int64
		want  bool
	}{{1, true}, {0, false}} {
		ctrl := gomock.NewController(t)
		c := mock.NewClient(ctrl)

		c.EXPECT().
			Do(gomock.Any(), mock.Match("EXISTS", "mykey")).
			Return(mock.Result(mock.RedisInt64(tc.reply)))

		s := NewStoreForTest(c)
		got, err := s.Exists(context.Background(), "mykey")
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if got != tc.want {
			t.Errorf("Exists() = %v for reply %d", got, tc.reply)
		}
	}
}

// --- index.go tests ---

func TestCreateIndex_Success(t *testing.T) {
	ctrl := gomock.NewController(t)
	c := mock.NewClient(ctrl)

	c.EXPECT().
		Do(gomock.Any(), mock.MatchFn(func(cmd []string) bool {
			joined := strings.Join(cmd, " ")
			return cmd[0] == "FT.CREATE" &&
				strings.Contains(joined, "ON JSON PREFIX 1 recodex:product:") &&
				strings.Contains(joined, "$.price.current AS price NUMERIC")
		})).
		Return(mock.Result(mock.RedisString("OK")))

	def := db.NewIndex("recodex:products:idx").
		OnJSON().
		Prefix("recodex:product:").
		Numeric("$.price.current", "price").
		MustBuild()

	s := NewStoreForTest(c)
	if err := s.CreateIndex(context.Background(), def); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}

func TestCreateIndex_AlreadyExists(t *testing.T) {
	ctrl := gomock.NewController(t)
	c := mock.NewClient(ctrl)

	c.EXPECT().
		Do(gomock.Any(), mock.MatchFn(func(cmd []string) bool {
			return cmd[0] == "FT.CREATE"
		})).
		Return(mock.Result(mock.RedisError("Index already exists")))

	s := NewStoreForTest(c)
	err := s.CreateIndex(context.Background(), db.NewIndex("idx").Tag("t", "").MustBuild())
	if !errors.Is(err, db.ErrIndexExists) {
		t.Errorf("expected ErrIndexExists, got %v", err)
	}
}

func TestDropIndex_WithDocs(t *testing.T) {
	ctrl := gomock.NewController(t)
	c := mock.NewClient(ctrl)

	c.EXPECT().
		Do(gomock.Any(), mock.Match("FT.DROPINDEX", "idx", "DD")).
		Return(mock.Result(mock.RedisString("OK")))

	s := NewStoreForTest(c)
	if err := s.DropIndex(context.Background(), "idx", true); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}

func TestDropIndex_NotFound(t *testing.T) {
	ctrl := gomock.NewController(t)
	c := mock.NewClient(ctrl)

	c.EXPECT().
		Do(gomock.Any(), mock.Match("FT.DROPINDEX", "idx")).
		Return(mock.Result(mock.RedisError("Unknown Index name")))

	s := NewStoreForTest(c)
	if err := s.DropIndex(context.Background(), "idx", false); !errors.Is(err, db.ErrIndexNotFound) {
		t.Errorf("expected ErrIndexNotFound, got %v", err)
	}
}

func TestIndexExists(t *testing.T) {
	ctrl := gomock.NewController(t)
	c := mock.NewClient(ctrl)

	gomock.InOrder(
		c.EXPECT().
			Do(gomock.Any(), mock.Match("FT.INFO", "idx")).
			Return(mock.Result(mock.RedisArray(mock.RedisString("index_name"), mock.RedisString("idx")))),
		c.EXPECT().
			Do(gomock.Any(), mock.Match("FT.INFO", "idx")).
			Return(mock.Result(mock.RedisError("Unknown Index name"))),
	)

	s := NewStoreForTest(c)
	if ok, err := s.IndexExists(context.Background(), "idx"); err != nil || !ok {
		t.Errorf("first call = %v, %v", ok, err)
	}
	if ok, err := s.IndexExists(context.Background(), "idx"); err != nil || ok {
		t.Errorf("second call = %v, %v", ok, err)
	}
}

func TestBuildFieldArgs(t *testing.T) {
	tests := []struct {
		name  string
		field db.IndexField
		want  string
	}{
		{"tag", db.IndexField{Name: "f", Type: db.IndexFieldTag}, "f TAG"},
		{"numeric", db.IndexField{Name: "f", Type: db.IndexFieldNumeric}, "f NUMERIC"},
		{"text", db.IndexField{Name: "f", Type: db.IndexFieldText}, "f TEXT"},
		{"weighted text", db.IndexField{Name: "$.title", Alias: "title", Type: db.IndexFieldText, TextWeight: 2.5}, "$.title AS title TEXT WEIGHT 2.5"},
		{"tag separator", db.IndexField{Name: "$.c[*]", Alias: "c", Type: db.IndexFieldTag, TagSeparator: "|"}, "$.c[*] AS c TAG SEPARATOR |"},
		{"tag case sensitive", db.IndexField{Name: "f", Type: db.IndexFieldTag, TagCaseSensitive: true}, "f TAG CASESENSITIVE"},
		{"nostem text", db.IndexField{Name: "$.brand", Alias: "brand", Type: db.IndexFieldText, NoStem: true}, "$.brand AS brand TEXT NOSTEM"},
		{"sortable numeric", db.IndexField{Name: "$.rating", Alias: "rating", Type: db.IndexFieldNumeric, Sortable: true}, "$.rating AS rating NUMERIC SORTABLE"},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			args, err := buildFieldArgs(&tc.field)
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if got := strings.Join(args, " "); got != tc.want {
				t.Errorf("args = %q, want %q", got, tc.want)
			}
		})
	}
}

func TestBuildFieldArgs_Errors(t *testing.T) {
	if _, err := buildFieldArgs(&db.IndexField{Name: "", Type: db.IndexFieldTag}); err == nil {
		t.Error("expected error for empty field name")
	}
	if _, err := buildFieldArgs(&db.IndexField{Name: "f", Type: db.IndexFieldType(99)}); err == nil {
		t.Error("expected error for unknown type")
	}
}

func TestBuildCreateArgs_Language(t *testing.T) {
	args, err := buildCreateArgs(&db.IndexDefinition{
		Name:        "idx",
		StorageType: db.StorageJSON,
		Language:    "english",
		Fields:      []db.IndexField{{Name: "$.t", Alias: "t", Type: db.IndexFieldText}},
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got := strings.Join(args, " "); got != "idx ON JSON LANGUAGE english SCHEMA $.t AS t TEXT" {
		t.Errorf("args = %q", got)
	}
}

func TestBuildCreateArgs_Validation(t *testing.T) {
	_, err := buildCreateArgs(&db.IndexDefinition{Name: "", Fields: []db.IndexField{{Name: "f", Type: db.IndexFieldTag}}})
	if err == nil {
		t.Error("expected error for empty name")
	}

	_, err = buildCreateArgs(&db.IndexDefinition{Name: "test"})
	if err == nil {
		t.Error("expected error for empty fields")
	}
}

// --- search.go tests ---

func TestSearch_Success(t *testing.T) {
	ctrl := gomock.NewController(t)
	c := mock.NewClient(ctrl)

	c.EXPECT().
		Do(gomock.Any(), mock.MatchFn(func(cmd []string) bool {
			joined := strings.Join(cmd, " ")
			return cmd[0] == "FT.SEARCH" && cmd[1] == "idx" &&
				cmd[2] == "@categories:{laptop}" &&
				strings.Contains(joined, "LIMIT 0 300") &&
				strings.Contains(joined, "RETURN 1 $") &&
				strings.HasSuffix(joined, "DIALECT 2")
		})).
		Return(mock.Result(mock.RedisArray(
			mock.RedisInt64(2),
			mock.RedisString("recodex:product:1"),
			mock.RedisArray(mock.RedisString("$"), mock.RedisString(`{"title":"a"}`)),
			mock.RedisString("recodex:product:2"),
			mock.RedisArray(mock.RedisString("$"), mock.RedisString(`{"title":"b"}`)),
		)))

	cond, _ := filter.NewMatch("categories", "laptop")
	expr, _ := filter.NewExpression([]filter.Condition{cond}, nil, nil)

	s := NewStoreForTest(c)
	result, err := s.Search(context.Background(), &db.Query{
		IndexName:    "idx",
		Filters:      expr,
		ReturnFields: []string{"$"},
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if result.Total != 2 || len(result.Entries) != 2 {
		t.Fatalf("got total=%d entries=%d", result.Total, len(result.Entries))
	}
	if result.Entries[1].Fields["$"] != `{"title":"b"}` {
		t.Errorf("entry[1] = %+v", result.Entries[1])
	}
}

func TestSearch_MatchAllWhenNoFilters(t *testing.T) {
	ctrl := gomock.NewController(t)
	c := mock.NewClient(ctrl)

	c.EXPECT().
		Do(gomock.Any(), mock.MatchFn(func(cmd []string) bool {
			return cmd[0] == "FT.SEARCH" && cmd[2] == "*" && cmd[4] == "5" && cmd[5] == "10"
		})).
		Return(mock.Result(mock.RedisArray(mock.RedisInt64(0))))

	s := NewStoreForTest(c)
	result, err := s.Search(context.Background(), &db.Query{IndexName: "idx", Offset: 5, Limit: 10})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(result.Entries) != 0 {
		t.Errorf("expected 0 entries, got %d", len(result.Entries))
	}
}

func TestSearch_Errors(t *testing.T) {
	ctrl := gomock.NewController(t)
	c := mock.NewClient(ctrl)

	gomock.InOrder(
		c.EXPECT().
			Do(gomock.Any(), mock.MatchFn(func(cmd []string) bool { return cmd[0] == "FT.SEARCH" })).
			Return(mock.ErrorResult(context.DeadlineExceeded)),
		c.EXPECT().
			Do(gomock.Any(), mock.MatchFn(func(cmd []string) bool { return cmd[0] == "FT.SEARCH" })).
			Return(mock.Result(mock.RedisError("idx: no such index"))),
	)

	s := NewStoreForTest(c)
	if _, err := s.Search(context.Background(), &db.Query{IndexName: "idx"}); !isDBError(err) {
		t.Errorf("expected db.Error, got %v", err)
	}
	if _, err := s.Search(context.Background(), &db.Query{IndexName: "idx"}); !errors.Is(err, db.ErrIndexNotFound) {
		t.Errorf("expected ErrIndexNotFound, got %v", err)
	}
}

func TestSearch_Validation(t *testing.T) {
	s := &Store{}
	ctx := context.Background()

	if _, err := s.Search(ctx, &db.Query{}); err == nil {
		t.Error("expected error for empty index name")
	}
	if _, err := s.Search(ctx, &db.Query{IndexName: "idx", Offset: -1}); err == nil {
		t.Error("expected error for negative offset")
	}
	if _, err := s.Count(ctx, "", filter.Expression{}); err == nil {
		t.Error("expected error for empty index name")
	}
}

func TestCount_Success(t *testing.T) {
	ctrl := gomock.NewController(t)
	c := mock.NewClient(ctrl)

	c.EXPECT().
		Do(gomock.Any(), mock.Match("FT.SEARCH", "idx", "@categories:{bagless\\ vacuum}", "LIMIT", "0", "0", "DIALECT", "2")).
		Return(mock.Result(mock.RedisArray(mock.RedisInt64(42))))

	cond, _ := filter.NewMatch("categories", "bagless vacuum")
	expr, _ := filter.NewExpression([]filter.Condition{cond}, nil, nil)

	s := NewStoreForTest(c)
	count, err := s.Count(context.Background(), "idx", expr)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if count != 42 {
		t.Errorf("expected 42, got %d", count)
	}
}

func TestCount_Empty(t *testing.T) {
	ctrl := gomock.NewController(t)
	c := mock.NewClient(ctrl)

	c.EXPECT().
		Do(gomock.Any(), mock.MatchFn(func(cmd []string) bool {
			return cmd[0] == "FT.SEARCH"
		})).
		Return(mock.Result(mock.RedisArray()))

	s := NewStoreForTest(c)
	count, err := s.Count(context.Background(), "idx", filter.Expression{})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if count != 0 {
		t.Errorf("expected 0, got %d", count)
	}
}

// --- Filter building tests ---

func TestBuildFilter_Empty(t *testing.T) {
	if result := buildFilter(filter.Expression{}); result != "" {
		t.Errorf("expected empty string, got %q", result)
	}
	if q := queryString(filter.Expression{}); q != "*" {
		t.Errorf("queryString = %q, want *", q)
	}
}

func TestBuildFilter(t *testing.T) {
	lte := 500.0
	price, _ := filter.NewRange("price", filter.Between(100, &lte))
	rating, _ := filter.NewRange("rating", filter.AtLeast(2.5))
	cat, _ := filter.NewMatch("categories", "In-Ear Headphones")
	contains, _ := filter.NewContains("categories", "Vacuum")
	feature, _ := filter.NewMatch("features", "Type=Cordless")
	text, _ := filter.NewText([]string{"title", "brand"}, []string{"quiet", "ultra-light"})
	red, _ := filter.NewMatch("color", "red")
	blue, _ := filter.NewMatch("color", "blue")

	tests := []struct {
		name                 string
		must, should, mustNt []filter.Condition
		want                 string
	}{
		{"tag", []filter.Condition{cat}, nil, nil, `@categories:{In\-Ear\ Headphones}`},
		{"contains", []filter.Condition{contains}, nil, nil, `@categories:{*vacuum*}`},
		{"numeric", []filter.Condition{price, rating}, nil, nil, `@price:[100 500] @rating:[2.5 +inf]`},
		{"text", []filter.Condition{text}, nil, nil, `@title|brand:(quiet|ultra\-light)`},
		{"should", nil, []filter.Condition{red, blue}, nil, `(@color:{red} | @color:{blue})`},
		{"must not", []filter.Condition{cat}, nil, []filter.Condition{feature},
			`@categories:{In\-Ear\ Headphones} -@features:{Type\=Cordless}`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			expr, err := filter.NewExpression(tt.must, tt.should, tt.mustNt)
			if err != nil {
				t.Fatalf("NewExpression: %v", err)
			}
			if got := buildFilter(expr); got != tt.want {
				t.Errorf("buildFilter() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestBuildNumericFilter_Exclusive(t *testing.T) {
	gt, lt := 5.0, 1000000.0
	rng, _ := filter.NewRangeFilter(&gt, nil, &lt, nil)
	if result := buildNumericFilter("price", rng); result != `@price:[(5 (1000000]` {
		t.Errorf("unexpected filter: %q", result)
	}
}

func TestEscapeQuery(t *testing.T) {
	input := `hello "world" @user {tag}`
	expected := `hello \"world\" \@user \{tag\}`
	if escaped := escapeQuery(input); escaped != expected {
		t.Errorf("expected %q, got %q", expected, escaped)
	}
}

// --- helpers ---

// isDBError is a test helper for checking wrapped db.Error.
func isDBError(err error) bool {
	var dbErr *db.Error
	return errors.As(err, &dbErr)
}

func TestEscapeTag(t *testing.T) {
	tests := []struct{ in, want string }{
		{"robot vacuum", `robot\ vacuum`},
		{"4.5 stars", `4\.5\ stars`},
		{"Wi-Fi/BT", `Wi\-Fi\/BT`},
		{"snake_case", "snake_case"},
		{"Küchenmaschine", "Küchenmaschine"},
	}
	for _, tt := range tests {
		if got := escapeTag(tt.in); got != tt.want {
			t.Errorf("escapeTag(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestQueryString_CategoryOnlyQuery(t *testing.T) {
	expr, err := query.Query{Category: "Bagless Vacuum"}.Expression()
	if err != nil {
		t.Fatalf("Expression: %v", err)
	}
	if got := queryString(expr); got != `@categories:{Bagless\ Vacuum}` {
		t.Errorf("queryString = %q", got)
	}
}
