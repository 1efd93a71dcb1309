package recognizer

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"time"

	"github.com/flexprice/notebilling/internal/config"
	"github.com/flexprice/notebilling/internal/domain/product"
	"github.com/flexprice/notebilling/internal/domain/recognition"
	"github.com/flexprice/notebilling/internal/domain/salesperson"
	"github.com/flexprice/notebilling/internal/domain/taxrate"
	ierr "github.com/flexprice/notebilling/internal/errors"
	"github.com/flexprice/notebilling/internal/logger"
	"github.com/invopop/jsonschema"
	"github.com/openai/openai-go"
	"github.com/openai/openai-go/option"
	"github.com/openai/openai-go/packages/param"
	"github.com/openai/openai-go/responses"
	"github.com/openai/openai-go/shared"
	"github.com/openai/openai-go/shared/constant"
)

const schemaName = "delivery_note_recognition"

// OpenAIRecognizer sends the image and the reference lists to the OpenAI Responses API
type OpenAIRecognizer struct {
	client       *openai.Client
	model        string
	schema       map[string]any
	salesPersons salesperson.Repository
	products     product.Repository
	taxRates     taxrate.Repository
	logger       *logger.Logger
}

func NewOpenAIRecognizer(
	cfg *config.Configuration,
	salesPersons salesperson.Repository,
	products product.Repository,
	taxRates taxrate.Repository,
	log *logger.Logger,
) (*OpenAIRecognizer, error) {
	if cfg.OpenAI.APIKey == "" {
		return nil, ierr.NewError("openai api key is not configured").
			WithHint("Set openai.api_key or choose the disabled recognizer").
			Mark(ierr.ErrValidation)
	}

	schema, err := resultSchema()
	if err != nil {
		return nil, err
	}

	opts := []option.RequestOption{option.WithAPIKey(cfg.OpenAI.APIKey)}
	if cfg.OpenAI.BaseURL != "" {
		opts = append(opts, option.WithBaseURL(cfg.OpenAI.BaseURL))
	}
	client := openai.NewClient(opts...)

	return &OpenAIRecognizer{
		client:       &client,
		model:        cfg.OpenAI.Model,
		schema:       schema,
		salesPersons: salesPersons,
		products:     products,
		taxRates:     taxRates,
		logger:       log,
	}, nil
}

// resultSchema reflects wireResult into the map form the SDK expects
func resultSchema() (map[string]any, error) {
	reflector := jsonschema.Reflector{
		AllowAdditionalProperties: false,
		DoNotReference:            true,
	}
	b, err := json.Marshal(reflector.Reflect(&wireResult{}))
	if err != nil {
		return nil, ierr.WithError(err).Mark(ierr.ErrSystem)
	}
	var m map[string]any
	if err := json.Unmarshal(b, &m); err != nil {
		return nil, ierr.WithError(err).Mark(ierr.ErrSystem)
	}
	return m, nil
}

func (r *OpenAIRecognizer) Recognize(ctx context.Context, img Image) (*recognition.Result, error) {
	md, err := LoadMasterData(ctx, r.salesPersons, r.products, r.taxRates)
	if err != nil {
		return nil, err
	}

	dataURL := "data:" + img.ContentType + ";base64," + base64.StdEncoding.EncodeToString(img.Data)

	params := responses.ResponseNewParams{
		Model: shared.ResponsesModel(r.model),
		Input: responses.ResponseNewParamsInputUnion{
			OfInputItemList: responses.ResponseInputParam{
				responses.ResponseInputItemParamOfMessage(
					responses.ResponseInputMessageContentListParam{
						{OfInputText: &responses.ResponseInputTextParam{Text: BuildPrompt(md)}},
						{OfInputImage: &responses.ResponseInputImageParam{
							ImageURL: openai.String(dataURL),
							Detail:   responses.ResponseInputImageDetailAuto,
						}},
					},
					responses.EasyInputMessageRoleUser,
				),
			},
		},
		Text: responses.ResponseTextConfigParam{
			Format: responses.ResponseFormatTextConfigUnionParam{
				OfJSONSchema: &responses.ResponseFormatTextJSONSchemaConfigParam{
					Type: constant.JSONSchema("json_schema"),
					Name: schemaName,
					// ids may come back quoted; FlexibleInt handles that
					Strict:      param.NewOpt(false),
					Schema:      r.schema,
					Description: param.NewOpt("Fields read from one delivery note"),
				},
			},
		},
	}

	start := time.Now()
	resp, err := r.client.Responses.New(ctx, params)
	if err != nil {
		return nil, ierr.WithError(err).
			WithHint("Image recognition request failed").
			WithReportableDetails(map[string]any{"file_name": img.FileName}).
			Mark(ierr.ErrRecognition)
	}

	r.logger.Debugw("recognizer responded",
		"file_name", img.FileName,
		"model", r.model,
		"duration_ms", time.Since(start).Milliseconds(),
	)

	return ParseResponse(resp.OutputText())
}
