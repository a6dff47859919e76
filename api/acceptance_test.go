package api

import (
	"net/http"
	"testing"

	"github.com/fulldump/apitest"
	"github.com/fulldump/biff"

	"github.com/fulldump/metaview/database"
	"github.com/fulldump/metaview/service"
)

type JSON = map[string]interface{}

func TestAcceptance(t *testing.T) {

	biff.Alternative("Setup", func(a *biff.A) {

		db := database.NewDatabase(&database.Config{
			Dir: t.TempDir(),
		})

		biff.AssertNil(db.Load())
		biff.AssertEqual(db.GetStatus(), database.StatusOperating)

		s := service.NewService(db)

		b := Build(s, "test")
		b.WithInterceptors(
			InterceptorUnavailable(db),
			RecoverFromPanic,
			PrettyErrorInterceptor,
		)

		api := apitest.NewWithHandler(b)

		request := func(method, path string) *apitest.Request {
			return api.Request(method, "/v1"+path)
		}

		a.Alternative("Create table", func(a *biff.A) {
			resp := request("POST", "/tables").WithBodyJson(JSON{
				"name": "things",
				"props": []JSON{
					{"name": "k", "kind": "int"},
					{"name": "v", "kind": "string"},
				},
			}).Do()

			biff.AssertEqual(resp.StatusCode, http.StatusCreated)
			biff.AssertEqualJson(resp.BodyJson(), JSON{
				"name":  "things",
				"total": 0,
				"views": 0,
			})

			a.Alternative("List tables", func(a *biff.A) {
				resp := request("GET", "/tables").Do()

				biff.AssertEqual(resp.StatusCode, http.StatusOK)
				biff.AssertEqualJson(resp.BodyJson(), []JSON{
					{"name": "things", "total": 0, "views": 0},
				})
			})

			a.Alternative("Create hash view and insert", func(a *biff.A) {
				resp := request("POST", "/tables/things:createView").WithBodyJson(JSON{
					"name":     "by_key",
					"kind":     "hash",
					"num_keys": 1,
				}).Do()
				biff.AssertEqual(resp.StatusCode, http.StatusCreated)

				resp = request("POST", "/tables/things:insert").WithBodyJson(JSON{
					"view":   "by_key",
					"values": JSON{"k": 5, "v": "five"},
				}).Do()
				biff.AssertEqual(resp.StatusCode, http.StatusCreated)

				request("POST", "/tables/things:insert").WithBodyJson(JSON{
					"view":   "by_key",
					"values": JSON{"k": 2, "v": "two"},
				}).Do()

				// duplicate key, last write wins
				request("POST", "/tables/things:insert").WithBodyJson(JSON{
					"view":   "by_key",
					"values": JSON{"k": 5, "v": "five again"},
				}).Do()

				resp = request("POST", "/tables/things:size").WithBodyJson(JSON{}).Do()
				biff.AssertEqualJson(resp.BodyJson(), JSON{"size": 2})

				a.Alternative("Lookup by key", func(a *biff.A) {
					resp := request("POST", "/tables/things:lookup").WithBodyJson(JSON{
						"view": "by_key",
						"key":  JSON{"k": 5},
					}).Do()

					body := resp.BodyJson().(map[string]interface{})
					biff.AssertEqualJson(body["count"], 1)
					row := body["row"].(map[string]interface{})
					biff.AssertEqual(row["v"], "five again")
				})

				a.Alternative("Lookup missing key", func(a *biff.A) {
					resp := request("POST", "/tables/things:lookup").WithBodyJson(JSON{
						"view": "by_key",
						"key":  JSON{"k": 7},
					}).Do()

					body := resp.BodyJson().(map[string]interface{})
					biff.AssertEqualJson(body["count"], 0)
				})

				a.Alternative("Find with filter", func(a *biff.A) {
					resp := request("POST", "/tables/things:find").WithBodyJson(JSON{
						"mode":   "fullscan",
						"filter": JSON{"k": 2},
						"limit":  10,
					}).Do()

					row := resp.BodyJson().(map[string]interface{})
					biff.AssertEqual(row["v"], "two")
				})

				a.Alternative("Set key cell cascades", func(a *biff.A) {
					// writing key 2 over the row holding key 5 deletes one row
					resp := request("POST", "/tables/things:lookup").WithBodyJson(JSON{
						"view": "by_key",
						"key":  JSON{"k": 5},
					}).Do()
					body := resp.BodyJson().(map[string]interface{})
					pos := body["pos"]

					resp = request("POST", "/tables/things:setCell").WithBodyJson(JSON{
						"view":   "by_key",
						"row":    pos,
						"column": "k",
						"value":  2,
					}).Do()
					biff.AssertEqualJson(resp.BodyJson(), JSON{"size": 1})
				})

				a.Alternative("Remove through view", func(a *biff.A) {
					resp := request("POST", "/tables/things:remove").WithBodyJson(JSON{
						"view": "by_key",
						"pos":  0,
					}).Do()
					biff.AssertEqualJson(resp.BodyJson(), JSON{"removed": 1})

					resp = request("POST", "/tables/things:size").WithBodyJson(JSON{}).Do()
					biff.AssertEqualJson(resp.BodyJson(), JSON{"size": 1})
				})

				a.Alternative("Inspect view map", func(a *biff.A) {
					resp := request("GET", "/tables/things/views/by_key/map").Do()
					biff.AssertEqual(resp.StatusCode, http.StatusOK)

					body := resp.BodyJson().(map[string]interface{})
					biff.AssertEqual(len(body["props"].([]interface{})), 2)
				})
			})

			a.Alternative("Create view on missing props", func(a *biff.A) {
				resp := request("POST", "/tables/things:createView").WithBodyJson(JSON{
					"name":  "broken",
					"kind":  "indexed",
					"props": []string{"nope"},
				}).Do()
				biff.AssertEqual(resp.StatusCode, http.StatusInternalServerError)
			})

			a.Alternative("Drop table", func(a *biff.A) {
				resp := request("POST", "/tables/things:dropTable").Do()
				biff.AssertEqualJson(resp.BodyJson(), JSON{"dropped": "things"})

				resp = request("GET", "/tables/things").Do()
				biff.AssertEqual(resp.StatusCode, http.StatusNotFound)
			})
		})

		a.Alternative("Get missing table", func(a *biff.A) {
			resp := request("GET", "/tables/nope").Do()
			biff.AssertEqual(resp.StatusCode, http.StatusNotFound)
		})
	})
}
