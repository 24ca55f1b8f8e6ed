package repositories

import (
	"context"

	"cloud.google.com/go/vertexai/genai" // VertexAI用
	genai_std "google.golang.org/genai"  // 標準GenAI用
)

// AIクライアント共通設定
type AIClientConfig struct {
	ProjectID    string
	Location     string
	GeminiAPIKey string
}

// VertexAI Client Pool Service
// vertex検出バックエンドで使用するクライアントプール
type VertexAIClientPool interface {
	// VertexAI用クライアントを取得
	GetVertexAIClient(ctx context.Context) (*genai.Client, error)

	// リソースのクリーンアップ
	Close() error
}

// GenAI Client Pool Service
// gemini検出バックエンドと音声合成で共有するクライアントプール
type GenAIClientPool interface {
	// 標準GenAI用クライアントを取得
	GetGenAIClient(ctx context.Context) (*genai_std.Client, error)

	// リソースのクリーンアップ
	Close() error
}

// Client Pool Service
// 全AIクライアントプールを統合管理するサービス
type ClientPoolService interface {
	VertexAIPool() VertexAIClientPool

	GenAIPool() GenAIClientPool

	Config() *AIClientConfig

	Close() error
}
