package service

import (
	"encoding/json"
	"fmt"
	"log"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/user/cinematch/internal/config"
)

// TMDBClient TMDB 开放接口客户端
type TMDBClient struct {
	apiKey  string
	baseURL string
	client  *http.Client
}

// NewTMDBClient 创建 TMDB 客户端
func NewTMDBClient(cfg *config.Config) *TMDBClient {
	return &TMDBClient{
		apiKey:  cfg.TMDBAPIKey,
		baseURL: cfg.TMDBBaseURL,
		client: &http.Client{
			Timeout: 15 * time.Second,
		},
	}
}

// RawMovie TMDB 热门电影条目
type RawMovie struct {
	ID          int     `json:"id"`
	Title       string  `json:"title"`
	Overview    string  `json:"overview"`
	ReleaseDate string  `json:"release_date"`
	PosterPath  string  `json:"poster_path"`
	VoteAverage float64 `json:"vote_average"`
	GenreIDs    []int   `json:"genre_ids"`
}

type tmdbGenreListResponse struct {
	Genres []struct {
		ID   int    `json:"id"`
		Name string `json:"name"`
	} `json:"genres"`
}

type tmdbPopularResponse struct {
	Page    int        `json:"page"`
	Results []RawMovie `json:"results"`
}

// FetchGenres 拉取类型列表，返回 id -> 名称 映射
// 映射在一次入库运行开始时构建，之后作为只读值传给入库流水线
func (c *TMDBClient) FetchGenres() (map[int]string, error) {
	var result tmdbGenreListResponse
	if err := c.getJSON("/genre/movie/list", nil, &result); err != nil {
		return nil, fmt.Errorf("获取类型列表失败: %w", err)
	}

	genreMap := make(map[int]string, len(result.Genres))
	for _, g := range result.Genres {
		genreMap[g.ID] = g.Name
	}
	return genreMap, nil
}

// FetchPopularMovies 拉取一页热门电影
func (c *TMDBClient) FetchPopularMovies(page int) ([]RawMovie, error) {
	params := url.Values{}
	params.Set("page", strconv.Itoa(page))
	params.Set("language", "en-US")

	var result tmdbPopularResponse
	if err := c.getJSON("/movie/popular", params, &result); err != nil {
		return nil, fmt.Errorf("获取热门电影第 %d 页失败: %w", page, err)
	}
	return result.Results, nil
}

// FetchPopularPages 拉取多页热门电影
// 单页失败只记日志并继续，保证拿到能拿到的部分
func (c *TMDBClient) FetchPopularPages(numPages int) []RawMovie {
	var movies []RawMovie
	for page := 1; page <= numPages; page++ {
		results, err := c.FetchPopularMovies(page)
		if err != nil {
			log.Printf("[TMDB] %v", err)
			continue
		}
		movies = append(movies, results...)
	}
	log.Printf("[TMDB] 共拉取 %d 部电影", len(movies))
	return movies
}

func (c *TMDBClient) getJSON(path string, params url.Values, target interface{}) error {
	if params == nil {
		params = url.Values{}
	}
	params.Set("api_key", c.apiKey)

	req, err := http.NewRequest("GET", c.baseURL+path+"?"+params.Encode(), nil)
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.client.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("请求返回状态码: %d", resp.StatusCode)
	}

	return json.NewDecoder(resp.Body).Decode(target)
}
