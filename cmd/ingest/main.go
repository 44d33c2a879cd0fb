package main

import (
	"flag"
	"log"

	"github.com/joho/godotenv"
	"github.com/user/cinematch/internal/config"
	"github.com/user/cinematch/internal/repository"
	"github.com/user/cinematch/internal/service"
)

// 独立批处理任务：从 TMDB 拉取热门电影并入库
// 设计上不与自身并发运行，重复运行依赖 tmdb_id 冲突忽略保证幂等
func main() {
	pages := flag.Int("pages", 5, "抓取的热门电影页数")
	flag.Parse()

	if err := godotenv.Load(); err != nil {
		log.Println("未找到 .env 文件，使用系统环境变量")
	}

	cfg := config.Load()
	if cfg.TMDBAPIKey == "" {
		log.Fatal("缺少 TMDB_API_KEY 环境变量")
	}

	db, err := repository.InitDB(cfg.DatabaseURL)
	if err != nil {
		log.Fatalf("数据库连接失败: %v", err)
	}
	sqlDB, _ := db.DB()
	defer sqlDB.Close()

	repos := repository.NewRepositories(db)
	tmdb := service.NewTMDBClient(cfg)
	embedder := service.NewOllamaEmbedder(cfg)
	ingest := service.NewIngestService(repos.Movie, embedder)

	// 类型映射在运行开始时构建一次，之后作为只读值传入
	genreMap, err := tmdb.FetchGenres()
	if err != nil {
		log.Fatalf("获取类型列表失败: %v", err)
	}
	log.Printf("[入库] 已加载 %d 个电影类型", len(genreMap))

	movies := tmdb.FetchPopularPages(*pages)
	if len(movies) == 0 {
		log.Fatal("没有获取到任何电影")
	}

	result := ingest.Ingest(movies, genreMap)
	log.Printf("[入库] 插入 %d 条，跳过 %d 条", result.Inserted, result.Skipped)
}
