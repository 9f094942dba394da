// Package dynamotest provides an in-memory DynamoDB fake for store tests. It
// understands the small expression subset the stores emit: equality and
// comparison conditions, attribute_exists/attribute_not_exists, SET with
// + and -, if_not_exists, list_append, and ADD.
package dynamotest

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strconv"
	"strings"
	"sync"

	dyn "github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
)

type item = map[string]types.AttributeValue

// Fake is a concurrency-safe in-memory table set keyed by a single string
// partition key per table.
type Fake struct {
	mu     sync.Mutex
	keys   map[string]string
	tables map[string]map[string]item

	PutCalls      int
	GetCalls      int
	UpdateCalls   int
	ScanCalls     int
	TransactCalls int

	// Err, when set, is returned by every call.
	Err error
}

// New returns a fake with the given table -> partition key attribute names.
func New(keys map[string]string) *Fake {
	f := &Fake{keys: map[string]string{}, tables: map[string]map[string]item{}}
	for t, k := range keys {
		f.keys[t] = k
		f.tables[t] = map[string]item{}
	}
	return f
}

// Item returns a stored item or nil.
func (f *Fake) Item(table, key string) map[string]types.AttributeValue {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.tables[table][key]
}

// Seed stores an item directly.
func (f *Fake) Seed(table string, it map[string]types.AttributeValue) {
	f.mu.Lock()
	defer f.mu.Unlock()
	k, _ := f.pk(table, it)
	f.tables[table][k] = copyItem(it)
}

// Len returns the number of items in table.
func (f *Fake) Len(table string) int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.tables[table])
}

func (f *Fake) pk(table string, it item) (string, error) {
	name, ok := f.keys[table]
	if !ok {
		return "", fmt.Errorf("unknown table %q", table)
	}
	s, ok := it[name].(*types.AttributeValueMemberS)
	if !ok {
		return "", fmt.Errorf("missing key %s", name)
	}
	return s.Value, nil
}

func (f *Fake) PutItem(ctx context.Context, params *dyn.PutItemInput, optFns ...func(*dyn.Options)) (*dyn.PutItemOutput, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.PutCalls++
	if f.Err != nil {
		return nil, f.Err
	}
	table := *params.TableName
	k, err := f.pk(table, params.Item)
	if err != nil {
		return nil, err
	}
	existing := f.tables[table][k]
	ok, err := evalCondition(deref(params.ConditionExpression), existing, params.ExpressionAttributeNames, params.ExpressionAttributeValues)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, &types.ConditionalCheckFailedException{Message: strPtr("conditional check failed")}
	}
	f.tables[table][k] = copyItem(params.Item)
	return &dyn.PutItemOutput{}, nil
}

func (f *Fake) GetItem(ctx context.Context, params *dyn.GetItemInput, optFns ...func(*dyn.Options)) (*dyn.GetItemOutput, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.GetCalls++
	if f.Err != nil {
		return nil, f.Err
	}
	table := *params.TableName
	k, err := f.pk(table, params.Key)
	if err != nil {
		return nil, err
	}
	it, ok := f.tables[table][k]
	if !ok {
		return &dyn.GetItemOutput{}, nil
	}
	return &dyn.GetItemOutput{Item: copyItem(it)}, nil
}

func (f *Fake) UpdateItem(ctx context.Context, params *dyn.UpdateItemInput, optFns ...func(*dyn.Options)) (*dyn.UpdateItemOutput, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.UpdateCalls++
	if f.Err != nil {
		return nil, f.Err
	}
	table := *params.TableName
	updated, err := f.update(table, params.Key, deref(params.ConditionExpression), deref(params.UpdateExpression), params.ExpressionAttributeNames, params.ExpressionAttributeValues)
	if err != nil {
		return nil, err
	}
	return &dyn.UpdateItemOutput{Attributes: copyItem(updated)}, nil
}

func (f *Fake) update(table string, key item, cond, expr string, names map[string]string, values map[string]types.AttributeValue) (item, error) {
	k, err := f.pk(table, key)
	if err != nil {
		return nil, err
	}
	existing := f.tables[table][k]
	ok, err := evalCondition(cond, existing, names, values)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, &types.ConditionalCheckFailedException{Message: strPtr("conditional check failed")}
	}
	next := copyItem(existing)
	if next == nil {
		next = copyItem(key)
	}
	if err := applyUpdate(expr, next, names, values); err != nil {
		return nil, err
	}
	f.tables[table][k] = next
	return next, nil
}

func (f *Fake) Scan(ctx context.Context, params *dyn.ScanInput, optFns ...func(*dyn.Options)) (*dyn.ScanOutput, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.ScanCalls++
	if f.Err != nil {
		return nil, f.Err
	}
	table := *params.TableName
	keys := make([]string, 0, len(f.tables[table]))
	for k := range f.tables[table] {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	var out []map[string]types.AttributeValue
	for _, k := range keys {
		it := f.tables[table][k]
		ok, err := evalCondition(deref(params.FilterExpression), it, params.ExpressionAttributeNames, params.ExpressionAttributeValues)
		if err != nil {
			return nil, err
		}
		if ok {
			out = append(out, copyItem(it))
		}
	}
	return &dyn.ScanOutput{Items: out, Count: int32(len(out))}, nil
}

func (f *Fake) TransactWriteItems(ctx context.Context, params *dyn.TransactWriteItemsInput, optFns ...func(*dyn.Options)) (*dyn.TransactWriteItemsOutput, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.TransactCalls++
	if f.Err != nil {
		return nil, f.Err
	}
	// check every condition before writing anything
	for _, ti := range params.TransactItems {
		if p := ti.Put; p != nil {
			k, err := f.pk(*p.TableName, p.Item)
			if err != nil {
				return nil, err
			}
			ok, err := evalCondition(deref(p.ConditionExpression), f.tables[*p.TableName][k], p.ExpressionAttributeNames, p.ExpressionAttributeValues)
			if err != nil {
				return nil, err
			}
			if !ok {
				return nil, &types.TransactionCanceledException{Message: strPtr("Transaction cancelled")}
			}
		}
		if u := ti.Update; u != nil {
			k, err := f.pk(*u.TableName, u.Key)
			if err != nil {
				return nil, err
			}
			ok, err := evalCondition(deref(u.ConditionExpression), f.tables[*u.TableName][k], u.ExpressionAttributeNames, u.ExpressionAttributeValues)
			if err != nil {
				return nil, err
			}
			if !ok {
				return nil, &types.TransactionCanceledException{Message: strPtr("Transaction cancelled")}
			}
		}
	}
	for _, ti := range params.TransactItems {
		if p := ti.Put; p != nil {
			k, _ := f.pk(*p.TableName, p.Item)
			f.tables[*p.TableName][k] = copyItem(p.Item)
		}
		if u := ti.Update; u != nil {
			if _, err := f.update(*u.TableName, u.Key, "", deref(u.UpdateExpression), u.ExpressionAttributeNames, u.ExpressionAttributeValues); err != nil {
				return nil, err
			}
		}
	}
	return &dyn.TransactWriteItemsOutput{}, nil
}

// --- expressions ---

func evalCondition(expr string, it item, names map[string]string, values map[string]types.AttributeValue) (bool, error) {
	expr = strings.TrimSpace(expr)
	if expr == "" {
		return true, nil
	}
	for _, clause := range strings.Split(expr, " AND ") {
		ok, err := evalClause(strings.TrimSpace(clause), it, names, values)
		if err != nil || !ok {
			return ok, err
		}
	}
	return true, nil
}

func evalClause(c string, it item, names map[string]string, values map[string]types.AttributeValue) (bool, error) {
	if inner, ok := call(c, "attribute_not_exists"); ok {
		_, exists := it[resolveName(inner, names)]
		return !exists, nil
	}
	if inner, ok := call(c, "attribute_exists"); ok {
		_, exists := it[resolveName(inner, names)]
		return exists, nil
	}
	for _, op := range []string{">=", "<=", "<>", "=", ">", "<"} {
		i := strings.Index(c, " "+op+" ")
		if i < 0 {
			continue
		}
		left, err := operand(strings.TrimSpace(c[:i]), it, names, values)
		if err != nil {
			return false, err
		}
		right, err := operand(strings.TrimSpace(c[i+len(op)+2:]), it, names, values)
		if err != nil {
			return false, err
		}
		if left == nil || right == nil {
			return false, nil
		}
		return compare(left, right, op)
	}
	return false, fmt.Errorf("dynamotest: unsupported condition %q", c)
}

func compare(a, b types.AttributeValue, op string) (bool, error) {
	an, aNum := a.(*types.AttributeValueMemberN)
	bn, bNum := b.(*types.AttributeValueMemberN)
	if aNum && bNum {
		x, _ := strconv.ParseFloat(an.Value, 64)
		y, _ := strconv.ParseFloat(bn.Value, 64)
		switch op {
		case "=":
			return x == y, nil
		case "<>":
			return x != y, nil
		case ">=":
			return x >= y, nil
		case "<=":
			return x <= y, nil
		case ">":
			return x > y, nil
		case "<":
			return x < y, nil
		}
	}
	as, aStr := a.(*types.AttributeValueMemberS)
	bs, bStr := b.(*types.AttributeValueMemberS)
	if aStr && bStr {
		switch op {
		case "=":
			return as.Value == bs.Value, nil
		case "<>":
			return as.Value != bs.Value, nil
		}
	}
	return false, fmt.Errorf("dynamotest: cannot compare %T %s %T", a, op, b)
}

func applyUpdate(expr string, it item, names map[string]string, values map[string]types.AttributeValue) error {
	sections := splitSections(expr)
	for _, a := range splitTop(sections["SET"]) {
		eq := strings.Index(a, "=")
		if eq < 0 {
			return fmt.Errorf("dynamotest: bad SET %q", a)
		}
		path := resolveName(strings.TrimSpace(a[:eq]), names)
		v, err := arith(strings.TrimSpace(a[eq+1:]), it, names, values)
		if err != nil {
			return err
		}
		it[path] = v
	}
	for _, a := range splitTop(sections["ADD"]) {
		parts := strings.Fields(a)
		if len(parts) != 2 {
			return fmt.Errorf("dynamotest: bad ADD %q", a)
		}
		path := resolveName(parts[0], names)
		delta, ok := values[parts[1]].(*types.AttributeValueMemberN)
		if !ok {
			return fmt.Errorf("dynamotest: ADD needs a number for %s", parts[1])
		}
		cur := &types.AttributeValueMemberN{Value: "0"}
		if n, ok := it[path].(*types.AttributeValueMemberN); ok {
			cur = n
		}
		it[path] = addNumbers(cur, delta, 1)
	}
	return nil
}

func arith(expr string, it item, names map[string]string, values map[string]types.AttributeValue) (types.AttributeValue, error) {
	depth := 0
	for i, r := range expr {
		switch r {
		case '(':
			depth++
		case ')':
			depth--
		case '+', '-':
			if depth != 0 || i == 0 || expr[i-1] != ' ' {
				continue
			}
			left, err := operand(strings.TrimSpace(expr[:i]), it, names, values)
			if err != nil {
				return nil, err
			}
			right, err := operand(strings.TrimSpace(expr[i+1:]), it, names, values)
			if err != nil {
				return nil, err
			}
			ln, ok1 := left.(*types.AttributeValueMemberN)
			rn, ok2 := right.(*types.AttributeValueMemberN)
			if !ok1 || !ok2 {
				return nil, fmt.Errorf("dynamotest: arithmetic on non-numbers in %q", expr)
			}
			sign := 1.0
			if r == '-' {
				sign = -1
			}
			return addNumbers(ln, rn, sign), nil
		}
	}
	return operand(expr, it, names, values)
}

func operand(s string, it item, names map[string]string, values map[string]types.AttributeValue) (types.AttributeValue, error) {
	if strings.HasPrefix(s, ":") {
		v, ok := values[s]
		if !ok {
			return nil, fmt.Errorf("dynamotest: missing value %s", s)
		}
		return v, nil
	}
	if inner, ok := call(s, "if_not_exists"); ok {
		args := splitTop(inner)
		if len(args) != 2 {
			return nil, fmt.Errorf("dynamotest: bad if_not_exists %q", s)
		}
		if v, ok := it[resolveName(args[0], names)]; ok {
			return v, nil
		}
		return operand(args[1], it, names, values)
	}
	if inner, ok := call(s, "list_append"); ok {
		args := splitTop(inner)
		if len(args) != 2 {
			return nil, fmt.Errorf("dynamotest: bad list_append %q", s)
		}
		a, err := operand(args[0], it, names, values)
		if err != nil {
			return nil, err
		}
		b, err := operand(args[1], it, names, values)
		if err != nil {
			return nil, err
		}
		al, ok1 := a.(*types.AttributeValueMemberL)
		bl, ok2 := b.(*types.AttributeValueMemberL)
		if !ok1 || !ok2 {
			return nil, fmt.Errorf("dynamotest: list_append needs lists")
		}
		joined := append(append([]types.AttributeValue{}, al.Value...), bl.Value...)
		return &types.AttributeValueMemberL{Value: joined}, nil
	}
	return it[resolveName(s, names)], nil
}

func addNumbers(a, b *types.AttributeValueMemberN, sign float64) *types.AttributeValueMemberN {
	x, _ := strconv.ParseFloat(a.Value, 64)
	y, _ := strconv.ParseFloat(b.Value, 64)
	return &types.AttributeValueMemberN{Value: strconv.FormatFloat(x+sign*y, 'f', -1, 64)}
}

func splitSections(expr string) map[string]string {
	out := map[string]string{}
	cur := ""
	for _, tok := range strings.Fields(expr) {
		if tok == "SET" || tok == "ADD" || tok == "REMOVE" {
			cur = tok
			continue
		}
		if cur == "" {
			continue
		}
		if out[cur] != "" {
			out[cur] += " "
		}
		out[cur] += tok
	}
	return out
}

// splitTop splits on commas that are not inside parentheses.
func splitTop(s string) []string {
	var parts []string
	depth, start := 0, 0
	for i, r := range s {
		switch r {
		case '(':
			depth++
		case ')':
			depth--
		case ',':
			if depth == 0 {
				parts = append(parts, strings.TrimSpace(s[start:i]))
				start = i + 1
			}
		}
	}
	if rest := strings.TrimSpace(s[start:]); rest != "" {
		parts = append(parts, rest)
	}
	return parts
}

func call(s, fn string) (string, bool) {
	if !strings.HasPrefix(s, fn+"(") || !strings.HasSuffix(s, ")") {
		return "", false
	}
	return s[len(fn)+1 : len(s)-1], true
}

func resolveName(s string, names map[string]string) string {
	s = strings.TrimSpace(s)
	if strings.HasPrefix(s, "#") {
		if n, ok := names[s]; ok {
			return n
		}
	}
	return s
}

func copyItem(it item) item {
	if it == nil {
		return nil
	}
	out := make(item, len(it))
	for k, v := range it {
		out[k] = v
	}
	return out
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}

func strPtr(s string) *string { return &s }

// IsConditionFailure reports whether err is a conditional or transaction failure.
func IsConditionFailure(err error) bool {
	var cc *types.ConditionalCheckFailedException
	var tc *types.TransactionCanceledException
	return errors.As(err, &cc) || errors.As(err, &tc)
}
