package dynamodb

import (
	"context"
	"errors"
	"fmt"
	"sort"

	"dailytens/application/ports"
	"dailytens/domain/game"
	pkgerrors "dailytens/pkg/errors"
	"dailytens/pkg/observability"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/attributevalue"
	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/expression"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
	"github.com/aws/smithy-go"
	"go.uber.org/zap"
)

// DBClient defines the DynamoDB operations the repository uses, so tests can
// substitute a fake for the SDK client.
type DBClient interface {
	GetItem(ctx context.Context, params *dynamodb.GetItemInput, optFns ...func(*dynamodb.Options)) (*dynamodb.GetItemOutput, error)
	PutItem(ctx context.Context, params *dynamodb.PutItemInput, optFns ...func(*dynamodb.Options)) (*dynamodb.PutItemOutput, error)
	Scan(ctx context.Context, params *dynamodb.ScanInput, optFns ...func(*dynamodb.Options)) (*dynamodb.ScanOutput, error)
}

// gameItem is the stored shape: the date doubles as the partition key
type gameItem struct {
	PK             string   `dynamodbav:"pk"`
	Date           string   `dynamodbav:"date"`
	Title          string   `dynamodbav:"title"`
	CorrectAnswers []string `dynamodbav:"correctAnswers"`
}

// GameRepository stores one item per game date in a single table
type GameRepository struct {
	client    DBClient
	tableName string
	metrics   *observability.Collector
	tracer    *observability.Tracer
	logger    *zap.Logger
}

// NewGameRepository creates a new DynamoDB game repository
func NewGameRepository(
	client DBClient,
	tableName string,
	metrics *observability.Collector,
	tracer *observability.Tracer,
	logger *zap.Logger,
) *GameRepository {
	return &GameRepository{
		client:    client,
		tableName: tableName,
		metrics:   metrics,
		tracer:    tracer,
		logger:    logger,
	}
}

// Get performs a strongly consistent point read so a record written by a
// concurrent winner is visible to the read-repair that follows a lost write.
func (r *GameRepository) Get(ctx context.Context, date string) (*game.Record, bool, error) {
	var (
		rec   *game.Record
		found bool
	)

	err := r.tracer.Trace(ctx, "dynamodb.GetItem", func(ctx context.Context) error {
		out, err := r.client.GetItem(ctx, &dynamodb.GetItemInput{
			TableName: aws.String(r.tableName),
			Key: map[string]types.AttributeValue{
				"pk": &types.AttributeValueMemberS{Value: date},
			},
			ConsistentRead: aws.Bool(true),
		})
		if err != nil {
			return err
		}
		if len(out.Item) == 0 {
			return nil
		}

		var item gameItem
		if err := attributevalue.UnmarshalMap(out.Item, &item); err != nil {
			return fmt.Errorf("failed to unmarshal game item: %w", err)
		}
		rec = item.toRecord()
		found = true
		return nil
	})
	if err != nil {
		r.recordFailure("get", date, err)
		return nil, false, pkgerrors.NewDatabaseError("get_game", err)
	}

	r.metrics.RecordStoreOperation("get", statusFor(found))
	return rec, found, nil
}

// CreateIfAbsent writes rec conditioned on the key being unused
func (r *GameRepository) CreateIfAbsent(ctx context.Context, rec *game.Record) error {
	av, err := attributevalue.MarshalMap(newGameItem(rec))
	if err != nil {
		return pkgerrors.NewDatabaseError("marshal_game", err)
	}

	cond := expression.AttributeNotExists(expression.Name("pk"))
	expr, err := expression.NewBuilder().WithCondition(cond).Build()
	if err != nil {
		return pkgerrors.NewDatabaseError("build_condition", err)
	}

	err = r.tracer.Trace(ctx, "dynamodb.PutItem", func(ctx context.Context) error {
		_, err := r.client.PutItem(ctx, &dynamodb.PutItemInput{
			TableName:                 aws.String(r.tableName),
			Item:                      av,
			ConditionExpression:       expr.Condition(),
			ExpressionAttributeNames:  expr.Names(),
			ExpressionAttributeValues: expr.Values(),
		})
		return err
	})
	if err != nil {
		var conditionalCheckFailed *types.ConditionalCheckFailedException
		if errors.As(err, &conditionalCheckFailed) {
			r.metrics.RecordStoreOperation("create", "exists")
			r.logger.Debug("Game already stored",
				zap.String("date", rec.Date),
			)
			return ports.ErrGameExists
		}
		r.recordFailure("create", rec.Date, err)
		return pkgerrors.NewDatabaseError("create_game", err)
	}

	r.metrics.RecordStoreOperation("create", "ok")
	return nil
}

// ScanDatesAtOrBefore scans the key attribute only, filtered to pk <= date.
// The table holds one small item per day, so a scan stays cheap.
func (r *GameRepository) ScanDatesAtOrBefore(ctx context.Context, date string) ([]string, error) {
	filter := expression.Name("pk").LessThanEqual(expression.Value(date))
	proj := expression.NamesList(expression.Name("pk"))
	expr, err := expression.NewBuilder().WithFilter(filter).WithProjection(proj).Build()
	if err != nil {
		return nil, pkgerrors.NewDatabaseError("build_filter", err)
	}

	input := &dynamodb.ScanInput{
		TableName:                 aws.String(r.tableName),
		FilterExpression:          expr.Filter(),
		ProjectionExpression:      expr.Projection(),
		ExpressionAttributeNames:  expr.Names(),
		ExpressionAttributeValues: expr.Values(),
	}

	var dates []string
	err = r.tracer.Trace(ctx, "dynamodb.Scan", func(ctx context.Context) error {
		paginator := dynamodb.NewScanPaginator(r.client, input)
		for paginator.HasMorePages() {
			page, err := paginator.NextPage(ctx)
			if err != nil {
				return err
			}
			for _, item := range page.Items {
				var key struct {
					PK string `dynamodbav:"pk"`
				}
				if err := attributevalue.UnmarshalMap(item, &key); err != nil {
					r.logger.Warn("Skipping unreadable key", zap.Error(err))
					continue
				}
				dates = append(dates, key.PK)
			}
		}
		return nil
	})
	if err != nil {
		r.recordFailure("scan", date, err)
		return nil, pkgerrors.NewDatabaseError("scan_dates", err)
	}

	sort.Strings(dates)
	r.metrics.RecordStoreOperation("scan", "ok")
	return dates, nil
}

func (r *GameRepository) recordFailure(operation, date string, err error) {
	r.metrics.RecordStoreOperation(operation, "error")

	fields := []zap.Field{
		zap.String("operation", operation),
		zap.String("date", date),
		zap.String("table", r.tableName),
		zap.Error(err),
	}
	var ae smithy.APIError
	if errors.As(err, &ae) {
		fields = append(fields,
			zap.String("errorCode", ae.ErrorCode()),
			zap.String("fault", ae.ErrorFault().String()),
		)
	}
	r.logger.Error("DynamoDB operation failed", fields...)
}

func newGameItem(rec *game.Record) gameItem {
	return gameItem{
		PK:             rec.Date,
		Date:           rec.Date,
		Title:          rec.Title,
		CorrectAnswers: rec.CorrectAnswers,
	}
}

func (i gameItem) toRecord() *game.Record {
	date := i.Date
	if date == "" {
		date = i.PK
	}
	return &game.Record{
		Date:           date,
		Title:          i.Title,
		CorrectAnswers: i.CorrectAnswers,
	}
}

func statusFor(found bool) string {
	if found {
		return "hit"
	}
	return "miss"
}

var _ ports.GameRepository = (*GameRepository)(nil)
