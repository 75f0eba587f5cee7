package usecase

import (
	"context"
	"errors"
	"math"
	"strconv"
	"strings"
	"sync"
	"unicode/utf8"

	"go.uber.org/zap"

	"jo3qma.com/bookswap_client/internal/domain/model"
	"jo3qma.com/bookswap_client/internal/domain/repository"
)

// MaxImageURLLength は画像URLの最大文字数です
const MaxImageURLLength = 500

var (
	// ErrUploadFailed は画像アップロードの失敗です
	ErrUploadFailed = errors.New("image upload failed")
	// ErrUnauthorized は出品APIが 401/403 を返したことを表します
	ErrUnauthorized = errors.New("must be logged in")
)

// SubmitError は出品の失敗理由と、画面に表示するメッセージの組です
type SubmitError struct {
	Kind    error // ErrUploadFailed, ErrUnauthorized, または nil（サーバー・通信エラー）
	Message string
	Err     error
}

func (e *SubmitError) Error() string { return e.Message }

func (e *SubmitError) Unwrap() []error {
	if e.Kind == nil {
		return []error{e.Err}
	}
	return []error{e.Kind, e.Err}
}

// FormFields は出品フォームの入力値です。数値も入力されたままの文字列で保持します
type FormFields struct {
	Name        string
	Price       string
	ImageURL    string
	CategoryID  string
	Condition   model.Condition
	Description string
}

// FormState は描画用の出品フォーム状態です
type FormState struct {
	Fields     FormFields
	File       *model.LocalFile
	Preview    *model.Preview
	Categories []model.Category
	Submitting bool
	Error      string
	Success    string
}

// ListingForm は出品フォームの入力・検証・送信を担当します
type ListingForm struct {
	items      repository.ItemRepository
	uploader   repository.ImageUploader
	categories repository.CategoryRepository
	previews   repository.PreviewStore
	sessions   SessionReader
	logger     *zap.Logger

	mu         sync.Mutex
	fields     FormFields
	file       *model.LocalFile
	preview    *model.Preview
	cats       []model.Category
	submitting bool
	errMsg     string
	success    string
}

// NewListingForm は新しいListingFormインスタンスを作成します
func NewListingForm(
	items repository.ItemRepository,
	uploader repository.ImageUploader,
	categories repository.CategoryRepository,
	previews repository.PreviewStore,
	sessions SessionReader,
	logger *zap.Logger,
) *ListingForm {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ListingForm{
		items:      items,
		uploader:   uploader,
		categories: categories,
		previews:   previews,
		sessions:   sessions,
		logger:     logger,
		fields:     FormFields{Condition: model.ConditionGood},
	}
}

// Mount はログイン状態にかかわらずカテゴリ一覧を読み込み、先頭のカテゴリを選択します
func (f *ListingForm) Mount(ctx context.Context) error {
	if f.sessions.Current() == nil {
		f.mu.Lock()
		f.errMsg = "Please log in to add items"
		f.mu.Unlock()
	}

	cats, err := f.categories.ListCategories(ctx)
	f.mu.Lock()
	defer f.mu.Unlock()
	if err != nil {
		f.errMsg = "Failed to load categories: " + model.MessageOf(err)
		f.logger.Warn("failed to load categories", zap.Error(err))
		return err
	}
	f.cats = cats
	if f.fields.CategoryID == "" && len(cats) > 0 {
		f.fields.CategoryID = strconv.FormatInt(cats[0].ID, 10)
	}
	return nil
}

// SetFields は入力値をまとめて設定します。Condition が空の場合は GOOD です
func (f *ListingForm) SetFields(in FormFields) {
	if in.Condition == "" {
		in.Condition = model.ConditionGood
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	f.fields = in
}

// SetImageURL は画像URLを入力します
func (f *ListingForm) SetImageURL(url string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.fields.ImageURL = url
}

// SelectFile はローカル画像を選択し、プレビューを作り直します
// 以前のプレビューは必ず解放し、入力済みのURLは消去します。nil は選択の解除です
func (f *ListingForm) SelectFile(file *model.LocalFile) error {
	f.mu.Lock()
	old := f.preview
	f.preview = nil
	f.file = nil
	f.mu.Unlock()
	f.previews.Release(old)

	if file == nil {
		return nil
	}
	p, err := f.previews.Create(*file)
	if err != nil {
		f.logger.Warn("failed to create preview", zap.String("file", file.Path), zap.Error(err))
		f.mu.Lock()
		f.errMsg = "Could not read the selected image: " + err.Error()
		f.mu.Unlock()
		return err
	}

	cp := *file
	f.mu.Lock()
	f.file = &cp
	f.preview = p
	f.fields.ImageURL = ""
	f.mu.Unlock()
	return nil
}

// validated は検証済みの送信内容です
type validated struct {
	input model.ItemInput
	file  *model.LocalFile
}

// validate は検証ルールを順に適用し、最初に失敗したものを返します
func (f *ListingForm) validate() (*validated, error) {
	f.mu.Lock()
	fields := f.fields
	file := f.file
	f.mu.Unlock()

	price, err := strconv.ParseFloat(strings.TrimSpace(fields.Price), 64)
	if err != nil || math.IsNaN(price) || math.IsInf(price, 0) || price <= 0 {
		return nil, invalid("Please enter a valid price greater than 0")
	}

	categoryID, err := strconv.ParseInt(strings.TrimSpace(fields.CategoryID), 10, 64)
	if err != nil || categoryID <= 0 {
		return nil, invalid("Please select a valid category")
	}

	url := strings.TrimSpace(fields.ImageURL)
	if file == nil && url == "" {
		return nil, invalid("Please provide an image by URL or upload one from your computer")
	}
	if utf8.RuneCountInString(url) > MaxImageURLLength {
		return nil, invalid("Image URL is too long (max 500 characters). Use a shorter URL or upload the image to a hosting service.")
	}

	if f.sessions.Current() == nil {
		return nil, invalid("Please log in to add items")
	}

	cond := fields.Condition
	if cond == "" {
		cond = model.ConditionGood
	}
	return &validated{
		input: model.ItemInput{
			Name:        strings.TrimSpace(fields.Name),
			Price:       price,
			ImageURL:    url,
			Condition:   cond,
			Description: strings.TrimSpace(fields.Description),
			CategoryID:  categoryID,
		},
		file: file,
	}, nil
}

// Submit は検証・アップロード・作成を順に行います
// ファイルが選択されている場合はアップロードで得たURLを使い、入力されたURLは送りません
func (f *ListingForm) Submit(ctx context.Context) (*model.Item, error) {
	f.mu.Lock()
	if f.submitting {
		f.mu.Unlock()
		return nil, errors.New("submission already in progress")
	}
	f.submitting = true
	f.errMsg = ""
	f.success = ""
	f.mu.Unlock()
	defer func() {
		f.mu.Lock()
		f.submitting = false
		f.mu.Unlock()
	}()

	v, err := f.validate()
	if err != nil {
		f.fail(err, ErrorMessage(err))
		return nil, err
	}

	if v.file != nil {
		url, err := f.uploader.UploadImage(ctx, *v.file)
		if err != nil {
			se := &SubmitError{Kind: ErrUploadFailed, Message: "Image upload failed: " + model.MessageOf(err), Err: err}
			f.fail(se, se.Message)
			return nil, se
		}
		v.input.ImageURL = url
	}

	item, err := f.items.CreateItem(ctx, v.input)
	if err != nil {
		se := &SubmitError{Message: "Failed to add item: " + model.MessageOf(err), Err: err}
		if model.IsAuthError(err) {
			se.Kind = ErrUnauthorized
			se.Message = "You must be logged in to add items. Please log in and try again."
		}
		f.fail(se, se.Message)
		return nil, se
	}

	f.logger.Info("item created", zap.Int64("item_id", item.ID), zap.Bool("uploaded", v.file != nil))
	f.reset()
	f.mu.Lock()
	f.success = "Item added successfully!"
	f.mu.Unlock()
	return item, nil
}

func (f *ListingForm) fail(err error, msg string) {
	f.mu.Lock()
	f.errMsg = msg
	f.mu.Unlock()
	var ve *ValidationError
	if !errors.As(err, &ve) {
		f.logger.Warn("failed to add item", zap.Int("status", model.StatusOf(err)), zap.Error(err))
	}
}

// reset はフォームを初期状態に戻し、先頭のカテゴリを選び直します
func (f *ListingForm) reset() {
	f.mu.Lock()
	old := f.preview
	f.preview = nil
	f.file = nil
	f.fields = FormFields{Condition: model.ConditionGood}
	if len(f.cats) > 0 {
		f.fields.CategoryID = strconv.FormatInt(f.cats[0].ID, 10)
	}
	f.mu.Unlock()
	f.previews.Release(old)
}

// Close はプレビューを解放します（画面を離れるとき）
func (f *ListingForm) Close() {
	f.mu.Lock()
	old := f.preview
	f.preview = nil
	f.file = nil
	f.mu.Unlock()
	f.previews.Release(old)
}

// State は描画用の状態のコピーを返します
func (f *ListingForm) State() FormState {
	f.mu.Lock()
	defer f.mu.Unlock()
	st := FormState{
		Fields:     f.fields,
		Categories: append([]model.Category(nil), f.cats...),
		Submitting: f.submitting,
		Error:      f.errMsg,
		Success:    f.success,
	}
	if f.file != nil {
		cp := *f.file
		st.File = &cp
	}
	if f.preview != nil {
		cp := *f.preview
		st.Preview = &cp
	}
	return st
}
